package textquery

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/usestring/hyper-mcp/pkg/contenttype"
)

func compileRegex(expression string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	return re, nil
}

// queryRegex returns each match, or its first capture group when the
// pattern has one.
func queryRegex(body []byte, expression string, maxResults int) (*Result, error) {
	re, err := compileRegex(expression)
	if err != nil {
		return nil, err
	}

	group := 0
	if re.NumSubexp() > 0 {
		group = 1
	}
	c := newCollector(maxResults)
	for _, m := range re.FindAllSubmatch(body, -1) {
		if !c.add(string(m[group])) {
			break
		}
	}
	return c.result(), nil
}

// queryForm returns the values of one form key, or a single key to value
// map for "*" or ".".
func queryForm(body []byte, key string, maxResults int) (*Result, error) {
	values, err := url.ParseQuery(string(bytes.TrimSpace(body)))
	if err != nil {
		return nil, fmt.Errorf("parse form data: %w", err)
	}

	c := newCollector(maxResults)
	if key == "*" || key == "." {
		all := make(map[string]any, len(values))
		for k, vs := range values {
			if len(vs) == 1 {
				all[k] = vs[0]
			} else {
				all[k] = toAny(vs)
			}
		}
		c.add(all)
		return c.result(), nil
	}
	for _, v := range values[key] {
		if !c.add(v) {
			break
		}
	}
	return c.result(), nil
}

// Decode parses a JSON, YAML or CSV object into JSON-compatible values. A
// CSV object becomes an array of objects keyed by its header row.
func Decode(obj Object) (any, error) {
	switch f := obj.Format(); f {
	case contenttype.FormatJSON:
		var v any
		if err := json.Unmarshal(obj.Data, &v); err != nil {
			return nil, fmt.Errorf("parse json %q: %w", obj.Name, err)
		}
		return v, nil
	case contenttype.FormatYAML:
		var v any
		if err := yaml.Unmarshal(obj.Data, &v); err != nil {
			return nil, fmt.Errorf("parse yaml %q: %w", obj.Name, err)
		}
		// Round trip so numbers and keys match decoded JSON.
		data, err := json.Marshal(normalize(v))
		if err != nil {
			return nil, fmt.Errorf("convert yaml %q: %w", obj.Name, err)
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("convert yaml %q: %w", obj.Name, err)
		}
		return out, nil
	case contenttype.FormatCSV:
		return decodeCSV(obj.Data)
	default:
		return nil, fmt.Errorf("cannot decode %s object %q", f, obj.Name)
	}
}

// ReadCSV parses a CSV body leniently: quotes may be bare and rows may
// have varying field counts.
func ReadCSV(body []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return records, nil
}

func decodeCSV(body []byte) ([]any, error) {
	records, err := ReadCSV(body)
	if err != nil {
		return nil, err
	}
	rows := make([]any, 0, len(records))
	if len(records) == 0 {
		return rows, nil
	}
	header := records[0]
	for _, rec := range records[1:] {
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalize converts maps with non-string keys, which YAML allows, into
// JSON objects.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	default:
		return v
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
