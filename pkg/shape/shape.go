// Package shape outlines the structure of stored objects so a caller can
// decide how to query them without reading them whole.
package shape

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/usestring/hyper-mcp/pkg/contenttype"
	js "github.com/usestring/hyper-mcp/pkg/jsonschema"
	"github.com/usestring/hyper-mcp/pkg/textquery"
)

// Outline is the structural summary of one object. Only the section for
// the object's format is set.
type Outline struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Size   int    `json:"size"`

	// JSON and YAML
	DocCount   int                `json:"doc_count,omitempty"`
	AllMatch   bool               `json:"all_match,omitempty"`
	Schema     *jsonschema.Schema `json:"schema,omitempty"`
	FieldStats []js.FieldStat     `json:"field_stats,omitempty"`

	CSV  *CSVOutline  `json:"csv,omitempty"`
	XML  *XMLOutline  `json:"xml,omitempty"`
	HTML *HTMLOutline `json:"html,omitempty"`
	Form []FormKey    `json:"form,omitempty"`
	Text *TextOutline `json:"text,omitempty"`

	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// FormKey is one key of a form-urlencoded object.
type FormKey struct {
	Key      string   `json:"key"`
	Count    int      `json:"count"`
	Examples []string `json:"examples,omitempty"`
}

// TextOutline summarizes plain text.
type TextOutline struct {
	Lines       int `json:"lines"`
	LongestLine int `json:"longest_line"`
}

// Options bound the work done per object.
type Options struct {
	MaxDocs     int // JSON/YAML documents sampled for the schema
	MaxCSVRows  int
	MaxXMLDepth int
	MaxHTMLIDs  int
}

// DefaultOptions returns the default bounds.
func DefaultOptions() *Options {
	return &Options{MaxDocs: 1000, MaxCSVRows: 100, MaxXMLDepth: 5, MaxHTMLIDs: 50}
}

// Inspect outlines obj. Parse failures are reported as a skipped outline,
// not an error, since a truncated download is expected to fail parsing.
func Inspect(obj textquery.Object, opts *Options) *Outline {
	if opts == nil {
		opts = DefaultOptions()
	}
	format := obj.Format()
	out := &Outline{Name: obj.Name, Format: string(format), Size: len(obj.Data)}

	var err error
	switch format {
	case contenttype.FormatJSON, contenttype.FormatYAML:
		err = out.inspectDocs(obj, opts)
	case contenttype.FormatCSV:
		out.CSV, err = inspectCSV(obj.Data, opts.MaxCSVRows)
	case contenttype.FormatXML:
		out.XML, err = inspectXML(obj.Data, opts.MaxXMLDepth)
	case contenttype.FormatHTML:
		out.HTML, err = inspectHTML(obj.Data, opts.MaxHTMLIDs)
	case contenttype.FormatForm:
		out.Form, err = inspectForm(obj.Data)
	case contenttype.FormatText:
		out.Text = inspectText(obj.Data)
	default:
		out.Skipped = true
		out.SkipReason = fmt.Sprintf("binary content (%s)", obj.ContentType)
	}
	if err != nil {
		out.Skipped = true
		out.SkipReason = err.Error()
	}
	return out
}

// inspectDocs infers a schema over the object's documents: the object
// itself, or the object elements of a top-level array.
func (o *Outline) inspectDocs(obj textquery.Object, opts *Options) error {
	v, err := textquery.Decode(obj)
	if err != nil {
		return err
	}

	var docs []map[string]any
	switch val := v.(type) {
	case map[string]any:
		docs = []map[string]any{val}
	case []any:
		for _, item := range val {
			if m, ok := item.(map[string]any); ok {
				docs = append(docs, m)
			}
		}
	}
	if len(docs) == 0 {
		o.Schema = js.FromValue(v)
		return nil
	}
	if opts.MaxDocs > 0 && len(docs) > opts.MaxDocs {
		docs = docs[:opts.MaxDocs]
	}

	inferred := js.InferDocs(docs, js.DefaultOptions())
	o.DocCount = len(docs)
	o.AllMatch = inferred.AllMatch
	o.Schema = inferred.Schema
	o.FieldStats = js.FieldStats(inferred.Schema, docs)
	return nil
}

func inspectForm(body []byte) ([]FormKey, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse form data: %w", err)
	}
	keys := make([]FormKey, 0, len(values))
	for k, vs := range values {
		fk := FormKey{Key: k, Count: len(vs)}
		for _, v := range vs {
			if len(fk.Examples) == 3 {
				break
			}
			fk.Examples = append(fk.Examples, v)
		}
		keys = append(keys, fk)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })
	return keys, nil
}

func inspectText(body []byte) *TextOutline {
	t := &TextOutline{}
	if len(body) == 0 {
		return t
	}
	for _, line := range strings.Split(strings.TrimSuffix(string(body), "\n"), "\n") {
		t.Lines++
		if n := len(strings.TrimRight(line, "\r")); n > t.LongestLine {
			t.LongestLine = n
		}
	}
	return t
}
