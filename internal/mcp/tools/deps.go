package tools

import (
	"github.com/usestring/hyper-mcp/internal/cache"
	"github.com/usestring/hyper-mcp/internal/config"
	"github.com/usestring/hyper-mcp/internal/query"
	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/jsoncompact"
	"github.com/usestring/hyper-mcp/pkg/textquery"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Client    *hyper.Client
	Results   *cache.ResultStore
	Flight    *cache.Flight
	Query     *query.Engine
	TextQuery *textquery.Engine
	Config    *config.Config
}

// CompactOptions returns the compaction limits from the configuration.
func (d *Deps) CompactOptions() *jsoncompact.Options {
	if d.Config == nil {
		return jsoncompact.DefaultOptions()
	}
	return &jsoncompact.Options{
		MaxArrayItems: d.Config.CompactMaxArrayItems,
		MaxStringLen:  d.Config.CompactMaxStringLen,
		MaxDepth:      d.Config.CompactMaxDepth,
	}
}

// ResultSet looks up a stored result set.
func (d *Deps) ResultSet(id string) (*cache.ResultSet, error) {
	if id == "" {
		return nil, ErrInvalidInput("result_set_id is required")
	}
	rs, ok := d.Results.Get(id)
	if !ok {
		return nil, ErrNotFound("result set", id)
	}
	return rs, nil
}

// previewItems is the number of documents shown inline by list tools.
func (d *Deps) previewItems() int {
	if d.Config == nil || d.Config.DefaultPreviewItems <= 0 {
		return config.DefaultPreviewItemsValue
	}
	return d.Config.DefaultPreviewItems
}
