package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/internal/mcp/prompts"
	"github.com/usestring/hyper-mcp/internal/mcp/tools"
)

// Server wraps the MCP server with hyper-specific components.
type Server struct {
	mcpServer *sdkmcp.Server
	deps      *tools.Deps
	version   string

	// Extension toggles
	enableBuiltinTools   bool
	enableBuiltinPrompts bool

	// Custom extension registration callbacks
	customRegistrations []func(*sdkmcp.Server)
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithBuiltinTools enables the builtin hyper tools and resources.
func WithBuiltinTools() ServerOption {
	return func(s *Server) {
		s.enableBuiltinTools = true
	}
}

// WithBuiltinPrompts enables the builtin hyper prompts.
func WithBuiltinPrompts() ServerOption {
	return func(s *Server) {
		s.enableBuiltinPrompts = true
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// WithCustomRegistration adds a custom registration callback.
// The callback receives the underlying MCP server and can register
// tools, prompts, or resources directly.
func WithCustomRegistration(fn func(*sdkmcp.Server)) ServerOption {
	return func(s *Server) {
		s.customRegistrations = append(s.customRegistrations, fn)
	}
}

// NewServer creates a new MCP server with the provided dependencies and options.
func NewServer(deps *tools.Deps, opts ...ServerOption) (*Server, error) {
	if deps == nil {
		return nil, fmt.Errorf("deps is required")
	}

	s := &Server{deps: deps, version: "dev"}

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{
			Name:    "hyper-mcp",
			Version: s.version,
		},
		&sdkmcp.ServerOptions{Instructions: s.instructions()},
	)

	// Register logging middleware
	s.mcpServer.AddReceivingMiddleware(LoggingMiddleware())

	// Create prompt config
	promptCfg := &prompts.Config{
		Connection: deps.Client.Connection().Redacted(),
		Domain:     deps.Client.Domain(),
	}

	// Register builtin capabilities if enabled
	if s.enableBuiltinTools {
		tools.Register(s.mcpServer, deps)
		s.registerResources()
	}
	if s.enableBuiltinPrompts {
		prompts.Register(s.mcpServer, promptCfg)
	}

	// Execute custom registration callbacks
	for _, fn := range s.customRegistrations {
		fn(s.mcpServer)
	}

	return s, nil
}

// instructions tells the client which hyper instance the tools act on.
func (s *Server) instructions() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tools act on the hyper instance %s, data domain %q.", s.deps.Client.Connection().Redacted(), s.deps.Client.Domain())
	if s.enableBuiltinTools {
		sb.WriteString(" Start with hyper_info_services to see which services it enables.")
	}
	if s.enableBuiltinPrompts {
		sb.WriteString(" The hyper_guide prompt explains result sets and the analysis tools.")
	}
	return sb.String()
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server for testing.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.mcpServer
}
