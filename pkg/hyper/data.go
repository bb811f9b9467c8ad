package hyper

import (
	"context"
	"net/http"
)

// Data is the document store service.
type Data struct {
	c *Client
}

// ListOptions selects a page of documents. Zero values are not sent.
type ListOptions struct {
	Limit      int
	StartKey   string
	EndKey     string
	Keys       []string // fetch exactly these ids
	Descending bool
}

func (o ListOptions) params() Params {
	p := Params{}
	if o.Limit > 0 {
		p["limit"] = o.Limit
	}
	if o.StartKey != "" {
		p["startkey"] = o.StartKey
	}
	if o.EndKey != "" {
		p["endkey"] = o.EndKey
	}
	if len(o.Keys) > 0 {
		p["keys"] = o.Keys
	}
	if o.Descending {
		p["descending"] = true
	}
	return p
}

// SortField orders query results by one field.
type SortField struct {
	Field string
	Desc  bool
}

// QueryOptions refine a selector query. Zero values are not sent.
type QueryOptions struct {
	Fields   []string
	Sort     []SortField
	Limit    int
	UseIndex string
}

func queryBody(selector map[string]any, o QueryOptions) map[string]any {
	body := map[string]any{"selector": selector}
	if len(o.Fields) > 0 {
		body["fields"] = o.Fields
	}
	if len(o.Sort) > 0 {
		sort := make([]map[string]string, len(o.Sort))
		for i, s := range o.Sort {
			dir := "ASC"
			if s.Desc {
				dir = "DESC"
			}
			sort[i] = map[string]string{s.Field: dir}
		}
		body["sort"] = sort
	}
	if o.Limit > 0 {
		body["limit"] = o.Limit
	}
	if o.UseIndex != "" {
		body["use_index"] = o.UseIndex
	}
	return body
}

// Add creates a document. The id comes back in an OkIDResult.
func (s Data) Add(ctx context.Context, doc any) (Result, error) {
	env, err := s.c.Do(ctx, "add", LogicalRequest{Service: ServiceData, Method: http.MethodPost, Body: doc})
	if err != nil {
		return nil, err
	}
	return env.IDResult(s.c.idField), nil
}

// Get fetches a document; the result carries its fields merged with status.
func (s Data) Get(ctx context.Context, id string) (Result, error) {
	env, err := s.c.Do(ctx, "get", LogicalRequest{Service: ServiceData, Method: http.MethodGet, Resource: id})
	if err != nil {
		return nil, err
	}
	return env.DocResult("")
}

// List pages through documents.
func (s Data) List(ctx context.Context, opts ListOptions) (Result, error) {
	env, err := s.c.Do(ctx, "list", LogicalRequest{Service: ServiceData, Method: http.MethodGet, Params: opts.params()})
	if err != nil {
		return nil, err
	}
	return env.DocsResult()
}

// Update replaces a document.
func (s Data) Update(ctx context.Context, id string, doc any) (Result, error) {
	env, err := s.c.Do(ctx, "update", LogicalRequest{Service: ServiceData, Method: http.MethodPut, Resource: id, Body: doc})
	if err != nil {
		return nil, err
	}
	return env.IDResult(s.c.idField), nil
}

// Remove deletes a document.
func (s Data) Remove(ctx context.Context, id string) (Result, error) {
	env, err := s.c.Do(ctx, "remove", LogicalRequest{Service: ServiceData, Method: http.MethodDelete, Resource: id})
	if err != nil {
		return nil, err
	}
	return env.IDResult(s.c.idField), nil
}

// Query finds documents matching selector.
func (s Data) Query(ctx context.Context, selector map[string]any, opts QueryOptions) (Result, error) {
	env, err := s.c.Do(ctx, "query", LogicalRequest{
		Service: ServiceData,
		Method:  http.MethodPost,
		Action:  ActionQuery,
		Body:    queryBody(selector, opts),
	})
	if err != nil {
		return nil, err
	}
	return env.DocsResult()
}

// Index creates a JSON index over fields.
func (s Data) Index(ctx context.Context, name string, fields []string) (Result, error) {
	env, err := s.c.Do(ctx, "index", LogicalRequest{
		Service: ServiceData,
		Method:  http.MethodPost,
		Action:  ActionIndex,
		Body:    map[string]any{"name": name, "type": "json", "fields": fields},
	})
	if err != nil {
		return nil, err
	}
	return env.Result(), nil
}

// Bulk writes many documents in one request.
func (s Data) Bulk(ctx context.Context, docs []Doc) (Result, error) {
	env, err := s.c.Do(ctx, "bulk", LogicalRequest{Service: ServiceData, Method: http.MethodPost, Action: ActionBulk, Body: nonNil(docs)})
	if err != nil {
		return nil, err
	}
	return env.BulkResult()
}
