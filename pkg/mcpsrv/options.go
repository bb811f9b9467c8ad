package mcpsrv

import (
	"context"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/internal/config"
	"github.com/usestring/hyper-mcp/internal/mcp/tools"
)

type serverConfig struct {
	config  *config.Config
	version string

	logLevel string
	logFile  string

	disableBuiltinTools   bool
	disableBuiltinPrompts bool

	// registrations run after the builtins, in option order. Tools that
	// need Deps are bound once NewServer has built them.
	registrations     []func(*mcp.Server)
	depsRegistrations []func(*mcp.Server, *Deps)
}

// Option configures the server.
type Option func(*serverConfig)

// WithLogLevel overrides LOG_LEVEL (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(cfg *serverConfig) {
		cfg.logLevel = level
	}
}

// WithLogFile overrides LOG_FILE. Empty logs to stderr.
func WithLogFile(path string) Option {
	return func(cfg *serverConfig) {
		cfg.logFile = path
	}
}

// WithConfig replaces the configuration loaded from the environment.
func WithConfig(c *config.Config) Option {
	return func(cfg *serverConfig) {
		if c != nil {
			cfg.config = c
		}
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(v string) Option {
	return func(cfg *serverConfig) {
		cfg.version = v
	}
}

// WithoutBuiltinTools leaves out the hyper_* tools and the hyper:// resources.
func WithoutBuiltinTools() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinTools = true
	}
}

// WithoutBuiltinPrompts leaves out the hyper_guide prompt.
func WithoutBuiltinPrompts() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinPrompts = true
	}
}

// WithTool registers a tool that needs nothing from the server. The output
// type is checked at registration like the builtin tools (see [AddTool]).
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server) {
			AddTool(srv, tool, handler)
		})
	}
}

// WithDepsTool registers a tool built from Deps, for handlers that call the
// hyper client or read the result store:
//
//	mcpsrv.WithDepsTool(
//	    &mcp.Tool{Name: "cache_exists", Description: "Report whether a cache key is set"},
//	    func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, KeyInput) (*mcp.CallToolResult, ExistsOutput, error) {
//	        return func(ctx context.Context, _ *mcp.CallToolRequest, in KeyInput) (*mcp.CallToolResult, ExistsOutput, error) {
//	            res, err := d.Client.Cache().Get(ctx, in.Key)
//	            if err != nil {
//	                return nil, ExistsOutput{}, err
//	            }
//	            return nil, ExistsOutput{Found: res.IsOK()}, nil
//	        }
//	    },
//	)
func WithDepsTool[In, Out any](tool *mcp.Tool, builder func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.depsRegistrations = append(cfg.depsRegistrations, func(srv *mcp.Server, deps *Deps) {
			AddTool(srv, tool, builder(deps))
		})
	}
}

// ResultSetInput is implemented by inputs of result set tools. Embedding
// [ResultSetRef] is the usual way to satisfy it.
type ResultSetInput interface {
	ResultSet() string
}

// ResultSetRef names a stored result set in a tool input.
type ResultSetRef struct {
	ResultSetID string `json:"result_set_id" jsonschema:"required,Result set ID from a list or query tool"`
}

// ResultSet returns the referenced result set id.
func (r ResultSetRef) ResultSet() string { return r.ResultSetID }

// WithResultSetTool registers a tool that analyzes the documents of a
// stored result set, like hyper_jq does. The server resolves the set before
// calling handler; an unknown or evicted id becomes a NOT_FOUND tool error.
//
//	type CountInput struct {
//	    mcpsrv.ResultSetRef
//	    Field string `json:"field"`
//	}
//
//	mcpsrv.WithResultSetTool(&mcp.Tool{Name: "count_field"},
//	    func(ctx context.Context, docs []map[string]any, in CountInput) (CountOutput, error) {
//	        ...
//	    })
func WithResultSetTool[In ResultSetInput, Out any](tool *mcp.Tool, handler func(ctx context.Context, docs []map[string]any, input In) (Out, error)) Option {
	return WithDepsTool(tool, func(d *Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error) {
		return func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
			var zero Out
			id := in.ResultSet()
			if id == "" {
				return nil, zero, tools.ErrInvalidInput("result_set_id is required")
			}
			rs, ok := d.Results.Get(id)
			if !ok {
				return nil, zero, tools.ErrNotFound("result set", id)
			}
			out, err := handler(ctx, rs.Maps(), in)
			return nil, out, err
		}
	})
}

// WithPrompt registers a prompt next to hyper_guide.
func WithPrompt(prompt *mcp.Prompt, handler func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server) {
			srv.AddPrompt(prompt, handler)
		})
	}
}

// WithResourceTemplate registers a resource template next to the hyper://
// templates. Handlers should answer unknown URIs with
// mcp.ResourceNotFoundError.
func WithResourceTemplate(template *mcp.ResourceTemplate, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server) {
			srv.AddResourceTemplate(template, handler)
		})
	}
}
