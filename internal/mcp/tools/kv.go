package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/types"
)

// CacheKeyInput addresses one cache entry.
type CacheKeyInput struct {
	Key string `json:"key" jsonschema:"required,Cache key"`
}

// CacheSetInput is the input for hyper_cache_set.
type CacheSetInput struct {
	Key   string `json:"key" jsonschema:"required,Cache key"`
	Value any    `json:"value" jsonschema:"required,Any JSON value"`
	TTL   string `json:"ttl,omitempty" jsonschema:"Time to live, e.g. 30s, 5m or 1h (default: no expiry)"`
}

// CacheQueryInput is the input for hyper_cache_query.
type CacheQueryInput struct {
	Pattern string `json:"pattern,omitempty" jsonschema:"Glob pattern over keys, e.g. movie-* (default: *)"`
}

// SearchKeyInput addresses one indexed document.
type SearchKeyInput struct {
	Key string `json:"key" jsonschema:"required,Document key"`
}

// SearchAddInput is the input for hyper_search_add.
type SearchAddInput struct {
	Key string         `json:"key" jsonschema:"required,Document key"`
	Doc map[string]any `json:"doc" jsonschema:"required,Document to index"`
}

// SearchLoadInput is the input for hyper_search_load.
type SearchLoadInput struct {
	Docs []map[string]any `json:"docs" jsonschema:"required,Documents to index. Each needs a key, _id or id field"`
}

// SearchQueryInput is the input for hyper_search_query.
type SearchQueryInput struct {
	Query  string         `json:"query" jsonschema:"required,Text to look for"`
	Fields []string       `json:"fields,omitempty" jsonschema:"Fields to search (default: all)"`
	Filter map[string]any `json:"filter,omitempty" jsonschema:"Exact-match filter applied to matches"`
}

// ToolCacheGet fetches a cached value.
func ToolCacheGet(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input CacheKeyInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input CacheKeyInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.Key == "" {
			return nil, types.ResultOutput{}, ErrInvalidInput("key is required")
		}
		res, err := d.Client.Cache().Get(ctx, input.Key)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		out := resultOutput(res)
		if out.OK {
			out.Resource = &types.ResourceRef{URI: CacheResourceURI(input.Key), MIME: MimeJSON}
		}
		return nil, out, nil
	}
}

// ToolCacheSet creates or replaces a cached value.
func ToolCacheSet(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input CacheSetInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input CacheSetInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.Key == "" {
			return nil, types.ResultOutput{}, ErrInvalidInput("key is required")
		}
		res, err := d.Client.Cache().Set(ctx, input.Key, input.Value, input.TTL)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolCacheRemove deletes a cached value.
func ToolCacheRemove(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input CacheKeyInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input CacheKeyInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.Key == "" {
			return nil, types.ResultOutput{}, ErrInvalidInput("key is required")
		}
		res, err := d.Client.Cache().Remove(ctx, input.Key)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolCacheQuery lists cache entries matching a key pattern into a result set.
func ToolCacheQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input CacheQueryInput) (*sdkmcp.CallToolResult, types.DocsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input CacheQueryInput) (*sdkmcp.CallToolResult, types.DocsOutput, error) {
		res, err := d.Client.Cache().Query(ctx, input.Pattern)
		if err != nil {
			return nil, types.DocsOutput{}, WrapHyperError(err)
		}
		return nil, d.docsOutput("cache", "query", res), nil
	}
}

// ToolSearchAdd indexes one document.
func ToolSearchAdd(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchAddInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchAddInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.Key == "" || input.Doc == nil {
			return nil, types.ResultOutput{}, ErrInvalidInput("key and doc are required")
		}
		res, err := d.Client.Search().Add(ctx, input.Key, input.Doc)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolSearchRemove drops a document from the index.
func ToolSearchRemove(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchKeyInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchKeyInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.Key == "" {
			return nil, types.ResultOutput{}, ErrInvalidInput("key is required")
		}
		res, err := d.Client.Search().Remove(ctx, input.Key)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolSearchLoad indexes many documents at once.
func ToolSearchLoad(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchLoadInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchLoadInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if len(input.Docs) == 0 {
			return nil, types.ResultOutput{}, ErrInvalidInput("docs must not be empty")
		}
		docs := make([]hyper.Doc, len(input.Docs))
		for i, doc := range input.Docs {
			docs[i] = doc
		}
		res, err := d.Client.Search().Load(ctx, docs)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolSearchQuery runs a full-text query into a result set.
func ToolSearchQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchQueryInput) (*sdkmcp.CallToolResult, types.DocsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchQueryInput) (*sdkmcp.CallToolResult, types.DocsOutput, error) {
		if input.Query == "" {
			return nil, types.DocsOutput{}, ErrInvalidInput("query is required")
		}
		res, err := d.Client.Search().Query(ctx, input.Query, hyper.SearchOptions{Fields: input.Fields, Filter: input.Filter})
		if err != nil {
			return nil, types.DocsOutput{}, WrapHyperError(err)
		}
		return nil, d.docsOutput("search", "query", res), nil
	}
}
