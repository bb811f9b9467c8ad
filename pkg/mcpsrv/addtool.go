package mcpsrv

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/internal/mcp/tools"
)

// AddTool registers a tool the way the builtin hyper tools are registered:
// it panics at startup if Out does not encode the way its inferred schema
// says (a non-struct output, a json.RawMessage or hyper result field, or a
// nil slice that marshals as null).
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}
