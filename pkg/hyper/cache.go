package hyper

import (
	"context"
	"net/http"
)

// Cache is the key-value cache service. TTLs are duration strings the
// backend understands, such as "30s" or "2h"; empty means no expiry.
type Cache struct {
	c *Client
}

// Add stores value under a new key.
func (s Cache) Add(ctx context.Context, key string, value any, ttl string) (Result, error) {
	body := map[string]any{"key": key, "value": value}
	if ttl != "" {
		body["ttl"] = ttl
	}
	env, err := s.c.Do(ctx, "add", LogicalRequest{Service: ServiceCache, Method: http.MethodPost, Body: body})
	if err != nil {
		return nil, err
	}
	return env.Result(), nil
}

// Get fetches the value stored under key.
func (s Cache) Get(ctx context.Context, key string) (Result, error) {
	env, err := s.c.Do(ctx, "get", LogicalRequest{Service: ServiceCache, Method: http.MethodGet, Resource: key})
	if err != nil {
		return nil, err
	}
	return env.DocResult("")
}

// Set creates or replaces the value under key.
func (s Cache) Set(ctx context.Context, key string, value any, ttl string) (Result, error) {
	var params Params
	if ttl != "" {
		params = Params{"ttl": ttl}
	}
	env, err := s.c.Do(ctx, "set", LogicalRequest{Service: ServiceCache, Method: http.MethodPut, Resource: key, Body: value, Params: params})
	if err != nil {
		return nil, err
	}
	return env.Result(), nil
}

// Remove deletes key.
func (s Cache) Remove(ctx context.Context, key string) (Result, error) {
	env, err := s.c.Do(ctx, "remove", LogicalRequest{Service: ServiceCache, Method: http.MethodDelete, Resource: key})
	if err != nil {
		return nil, err
	}
	return env.Result(), nil
}

// Query lists entries whose keys match a glob pattern ("*" when empty).
func (s Cache) Query(ctx context.Context, pattern string) (Result, error) {
	if pattern == "" {
		pattern = "*"
	}
	env, err := s.c.Do(ctx, "query", LogicalRequest{
		Service: ServiceCache,
		Method:  http.MethodPost,
		Action:  ActionQuery,
		Params:  Params{"pattern": pattern},
	})
	if err != nil {
		return nil, err
	}
	return env.DocsResult()
}
