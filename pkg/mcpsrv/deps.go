package mcpsrv

import (
	"github.com/usestring/hyper-mcp/internal/cache"
	"github.com/usestring/hyper-mcp/internal/config"
	"github.com/usestring/hyper-mcp/internal/query"
	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/textquery"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Client    *hyper.Client
	Results   *cache.ResultStore
	Flight    *cache.Flight
	Query     *query.Engine
	TextQuery *textquery.Engine
	Config    *config.Config
}
