package hyper

import (
	"context"
	"net/http"
)

// Search is the full-text search service.
type Search struct {
	c *Client
}

// SearchOptions narrow a search query. Zero values are not sent.
type SearchOptions struct {
	Fields []string
	Filter map[string]any
}

// Add indexes doc under key.
func (s Search) Add(ctx context.Context, key string, doc any) (Result, error) {
	env, err := s.c.Do(ctx, "add", LogicalRequest{
		Service: ServiceSearch,
		Method:  http.MethodPost,
		Body:    map[string]any{"key": key, "doc": doc},
	})
	if err != nil {
		return nil, err
	}
	return env.Result(), nil
}

// Get fetches the indexed document stored under key.
func (s Search) Get(ctx context.Context, key string) (Result, error) {
	env, err := s.c.Do(ctx, "get", LogicalRequest{Service: ServiceSearch, Method: http.MethodGet, Resource: key})
	if err != nil {
		return nil, err
	}
	return env.DocResult("doc")
}

// Update replaces the indexed document under key.
func (s Search) Update(ctx context.Context, key string, doc any) (Result, error) {
	env, err := s.c.Do(ctx, "update", LogicalRequest{Service: ServiceSearch, Method: http.MethodPut, Resource: key, Body: doc})
	if err != nil {
		return nil, err
	}
	return env.Result(), nil
}

// Remove drops key from the index.
func (s Search) Remove(ctx context.Context, key string) (Result, error) {
	env, err := s.c.Do(ctx, "remove", LogicalRequest{Service: ServiceSearch, Method: http.MethodDelete, Resource: key})
	if err != nil {
		return nil, err
	}
	return env.Result(), nil
}

// Load indexes many documents in one request.
func (s Search) Load(ctx context.Context, docs []Doc) (Result, error) {
	env, err := s.c.Do(ctx, "load", LogicalRequest{Service: ServiceSearch, Method: http.MethodPost, Action: ActionBulk, Body: nonNil(docs)})
	if err != nil {
		return nil, err
	}
	return env.SearchLoadResult()
}

// Query runs a full-text query.
func (s Search) Query(ctx context.Context, query string, opts SearchOptions) (Result, error) {
	body := map[string]any{"query": query}
	if len(opts.Fields) > 0 {
		body["fields"] = opts.Fields
	}
	if len(opts.Filter) > 0 {
		body["filter"] = opts.Filter
	}
	env, err := s.c.Do(ctx, "query", LogicalRequest{Service: ServiceSearch, Method: http.MethodPost, Action: ActionQuery, Body: body})
	if err != nil {
		return nil, err
	}
	return env.SearchQueryResult()
}
