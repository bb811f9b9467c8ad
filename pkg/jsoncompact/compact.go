// Package jsoncompact shrinks JSON documents for previews: long arrays are
// trimmed, long strings truncated and deep nesting cut off.
package jsoncompact

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Options controls compaction. Zero fields mean no limit.
type Options struct {
	MaxArrayItems int
	MaxStringLen  int // in bytes, cut on a rune boundary
	MaxDepth      int
}

// Default values for compaction options.
const (
	DefaultMaxArrayItems = 3
	DefaultMaxStringLen  = 500
	DefaultMaxDepth      = 0 // unlimited
)

// DefaultOptions returns the default compaction settings.
func DefaultOptions() *Options {
	return &Options{
		MaxArrayItems: DefaultMaxArrayItems,
		MaxStringLen:  DefaultMaxStringLen,
		MaxDepth:      DefaultMaxDepth,
	}
}

// Compact compacts raw JSON. Empty input is returned unchanged.
func Compact(data []byte, opts *Options) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return json.Marshal(CompactValue(v, opts))
}

// CompactValue compacts a decoded JSON value. The input is not modified.
func CompactValue(v any, opts *Options) any {
	if opts == nil {
		opts = DefaultOptions()
	}
	c := compactor{opts: opts}
	return c.value(v, 0)
}

// Preview is a compacted head of a document list.
type Preview struct {
	Docs    []any `json:"docs"`
	Omitted int   `json:"omitted,omitempty"` // documents left out of the preview
}

// PreviewDocs compacts at most maxDocs documents (all when maxDocs <= 0).
func PreviewDocs(docs []map[string]any, maxDocs int, opts *Options) Preview {
	n := len(docs)
	if maxDocs > 0 && n > maxDocs {
		n = maxDocs
	}
	p := Preview{Docs: make([]any, 0, n), Omitted: len(docs) - n}
	for _, d := range docs[:n] {
		p.Docs = append(p.Docs, CompactValue(d, opts))
	}
	return p
}

type compactor struct {
	opts *Options
}

func (c compactor) value(v any, depth int) any {
	if c.opts.MaxDepth > 0 && depth >= c.opts.MaxDepth {
		switch v.(type) {
		case map[string]any, []any:
			return "[max depth]"
		}
	}

	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = c.value(child, depth+1)
		}
		return out
	case []any:
		return c.array(val, depth)
	case string:
		return c.str(val)
	default:
		return v
	}
}

func (c compactor) array(arr []any, depth int) []any {
	keep := len(arr)
	if c.opts.MaxArrayItems > 0 && keep > c.opts.MaxArrayItems {
		keep = c.opts.MaxArrayItems
	}
	out := make([]any, 0, keep+1)
	for _, item := range arr[:keep] {
		out = append(out, c.value(item, depth+1))
	}
	if rest := len(arr) - keep; rest > 0 {
		out = append(out, fmt.Sprintf("... (%d more items)", rest))
	}
	return out
}

func (c compactor) str(s string) string {
	limit := c.opts.MaxStringLen
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + fmt.Sprintf("... (%d more chars)", len(s)-cut)
}
