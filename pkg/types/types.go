// Package types provides shared types for hyper-mcp.
// These types are used across multiple packages and are designed for external consumption.
package types

import "encoding/json"

// ToAny round-trips a typed value through JSON to produce an untyped any.
// Use this when a tool output field must be any (instead of json.RawMessage)
// to satisfy the MCP SDK's schema validation.
func ToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResourceRef points to an MCP resource.
type ResourceRef struct {
	URI  string `json:"uri"`
	MIME string `json:"mime"`
	Hint string `json:"hint,omitempty"`
}

// ResultOutput is the tool form of a single hyper result: an acknowledgement,
// an id, a fetched document or per-document outcomes of a bulk write.
type ResultOutput struct {
	OK       bool         `json:"ok"`
	Status   int          `json:"status"`
	Msg      string       `json:"msg,omitempty"`
	ID       string       `json:"id,omitempty"`
	Doc      any          `json:"doc,omitempty"`
	Results  []any        `json:"results,omitempty"`
	Resource *ResourceRef `json:"resource,omitempty"`
}

// DocsOutput is returned by tools that list documents. The full list is kept
// server-side under ResultSetID; Preview holds a compacted head of it.
type DocsOutput struct {
	OK          bool         `json:"ok"`
	Status      int          `json:"status"`
	Msg         string       `json:"msg,omitempty"`
	ResultSetID string       `json:"result_set_id,omitempty"`
	Count       int          `json:"count"`
	Preview     []any        `json:"preview,omitzero"`
	Omitted     int          `json:"omitted,omitempty"`
	Resource    *ResourceRef `json:"resource,omitempty"`
	Hint        string       `json:"hint,omitempty"`
}

// InfoOutput describes a hyper instance.
type InfoOutput struct {
	OK         bool     `json:"ok"`
	Status     int      `json:"status"`
	Msg        string   `json:"msg,omitempty"`
	Name       string   `json:"name,omitempty"`
	Version    string   `json:"version,omitempty"`
	Services   []string `json:"services,omitzero"`
	Connection string   `json:"connection"` // credentials redacted
	Domain     string   `json:"domain"`
}

// DownloadOutput carries a storage object. Content is text for textual
// content types and base64 otherwise.
type DownloadOutput struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Category    string `json:"category"`
	Encoding    string `json:"encoding"` // "text" or "base64"
	Size        int    `json:"size"`
	Content     string `json:"content"`
	Truncated   bool   `json:"truncated,omitempty"`
}

// StorageQueryOutput is the result of a CSS, XPath, regex, form or JQ query
// over one stored object.
type StorageQueryOutput struct {
	Name        string   `json:"name"`
	ContentType string   `json:"content_type"`
	Format      string   `json:"format"`
	Mode        string   `json:"mode"`
	Values      []any    `json:"values,omitzero"`
	Count       int      `json:"count"`
	Truncated   bool     `json:"truncated,omitempty"` // more values than max_results
	Partial     bool     `json:"partial,omitempty"`   // object cut at the download cap
	Errors      []string `json:"errors,omitempty"`
}

// StorageInspectOutput outlines a stored object. Outline holds the
// format-specific structure (schema and field stats, CSV columns, XML tree,
// HTML outline, form keys).
type StorageInspectOutput struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Partial     bool   `json:"partial,omitempty"`
	Outline     any    `json:"outline"`
}
