// Package textquery extracts values from stored objects using the query
// language that suits their format: CSS selectors or XPath for markup,
// jq for JSON, YAML and CSV, regular expressions for anything textual.
package textquery

import (
	"encoding/json"
	"fmt"

	"github.com/usestring/hyper-mcp/internal/query"
	"github.com/usestring/hyper-mcp/pkg/contenttype"
)

// Mode is an extraction language.
type Mode string

const (
	ModeCSS   Mode = "css"
	ModeXPath Mode = "xpath"
	ModeRegex Mode = "regex"
	ModeForm  Mode = "form"
	ModeJQ    Mode = "jq"
)

// Object is a stored object to query.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

// Format returns the object's syntax.
func (o Object) Format() contenttype.Format {
	return contenttype.FormatOf(o.ContentType, o.Name)
}

// Result holds the values extracted from one object.
type Result struct {
	Mode      Mode     `json:"mode"`
	Format    string   `json:"format"`
	Values    []any    `json:"values"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// ModeFor returns the default extraction mode for a format.
func ModeFor(f contenttype.Format) Mode {
	switch f {
	case contenttype.FormatJSON, contenttype.FormatYAML, contenttype.FormatCSV:
		return ModeJQ
	case contenttype.FormatHTML:
		return ModeCSS
	case contenttype.FormatXML:
		return ModeXPath
	case contenttype.FormatForm:
		return ModeForm
	default:
		return ModeRegex
	}
}

// Engine dispatches queries to the mode handlers.
type Engine struct {
	jq *query.Engine
}

// NewEngine returns an engine that runs jq expressions on jq.
func NewEngine(jq *query.Engine) *Engine {
	if jq == nil {
		jq = query.NewEngine()
	}
	return &Engine{jq: jq}
}

// Query extracts up to maxResults values from obj. An empty mode is chosen
// from the object's format. Binary objects are rejected.
func (e *Engine) Query(obj Object, expression string, mode Mode, maxResults int) (*Result, error) {
	format := obj.Format()
	if format == contenttype.FormatBinary {
		return nil, fmt.Errorf("object %q is binary (%s)", obj.Name, obj.ContentType)
	}
	if mode == "" {
		mode = ModeFor(format)
	}
	if err := e.Validate(expression, mode); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch mode {
	case ModeCSS:
		res, err = queryCSS(obj.Data, expression, maxResults)
	case ModeXPath:
		res, err = queryXPath(obj.Data, format, expression, maxResults)
	case ModeRegex:
		res, err = queryRegex(obj.Data, expression, maxResults)
	case ModeForm:
		res, err = queryForm(obj.Data, expression, maxResults)
	case ModeJQ:
		res, err = e.queryJQ(obj, format, expression, maxResults)
	}
	if err != nil {
		return nil, err
	}
	res.Mode = mode
	res.Format = string(format)
	res.Count = len(res.Values)
	return res, nil
}

// Validate checks an expression without running it.
func (e *Engine) Validate(expression string, mode Mode) error {
	if expression == "" {
		return fmt.Errorf("%s expression is required", mode)
	}
	switch mode {
	case ModeCSS, ModeForm:
		return nil
	case ModeXPath:
		return validateXPath(expression)
	case ModeRegex:
		_, err := compileRegex(expression)
		return err
	case ModeJQ:
		return e.jq.ValidateExpression(expression)
	default:
		return fmt.Errorf("unknown mode %q (valid: css, xpath, regex, form, jq)", mode)
	}
}

// queryJQ runs the expression once over the decoded object. CSV objects
// decode to an array of row objects keyed by the header.
func (e *Engine) queryJQ(obj Object, format contenttype.Format, expression string, maxResults int) (*Result, error) {
	data := obj.Data
	if format != contenttype.FormatJSON {
		v, err := Decode(obj)
		if err != nil {
			return nil, err
		}
		if data, err = json.Marshal(v); err != nil {
			return nil, fmt.Errorf("encode %s as JSON: %w", format, err)
		}
	}
	qr, err := e.jq.Query(data, expression, false, maxResults)
	if err != nil {
		return nil, err
	}
	values := qr.Values
	if values == nil {
		values = []any{}
	}
	return &Result{
		Values:    values,
		Truncated: maxResults > 0 && len(values) >= maxResults,
		Errors:    qr.Errors,
	}, nil
}

// collector caps extracted values.
type collector struct {
	max       int
	values    []any
	truncated bool
}

func newCollector(max int) *collector {
	return &collector{max: max, values: []any{}}
}

// add appends v and reports whether more values are wanted.
func (c *collector) add(v any) bool {
	if c.max > 0 && len(c.values) >= c.max {
		c.truncated = true
		return false
	}
	c.values = append(c.values, v)
	return true
}

func (c *collector) result() *Result {
	return &Result{Values: c.values, Truncated: c.truncated}
}
