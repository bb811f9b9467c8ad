package jsonschema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

// FieldStat describes one field across a set of documents.
type FieldStat struct {
	Path          string   `json:"path"` // e.g. "meta.year", "cast[].name"
	Type          string   `json:"type"`
	Frequency     float64  `json:"frequency"` // fraction of documents carrying the field
	Required      bool     `json:"required"`
	Nullable      bool     `json:"nullable"`
	DistinctCount int      `json:"distinct_count"`
	Examples      []any    `json:"examples,omitempty"`
	Format        string   `json:"format,omitempty"` // uuid, iso8601, url, email or enum
	EnumValues    []string `json:"enum_values,omitempty"`
}

const (
	statsMaxDepth         = 5
	maxExamples           = 3
	minSamplesForFormat   = 5
	maxEnumDistinctValues = 10
)

var formats = []struct {
	name string
	re   *regexp.Regexp
}{
	{"uuid", regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)},
	{"iso8601", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2})?`)},
	{"url", regexp.MustCompile(`^https?://`)},
	{"email", regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)},
}

// FieldStats walks schema and computes a flat table of per-field stats
// from docs. Paths deeper than five levels are reported once as truncated.
func FieldStats(schema *jsonschema.Schema, docs []map[string]any) []FieldStat {
	if schema == nil || len(docs) == 0 {
		return nil
	}
	samples := make([]any, len(docs))
	for i, d := range docs {
		samples[i] = d
	}
	var stats []FieldStat
	walk(schema, "", samples, 0, &stats)
	return stats
}

func walk(s *jsonschema.Schema, path string, samples []any, depth int, stats *[]FieldStat) {
	if s == nil || s.Type != "object" || s.Properties == nil {
		return
	}
	if depth > statsMaxDepth {
		*stats = append(*stats, FieldStat{Path: path + " (truncated at depth limit)", Type: "..."})
		return
	}

	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		fieldPath := p.Key
		if path != "" {
			fieldPath = path + "." + p.Key
		}
		values, present := fieldValues(p.Key, samples)
		*stats = append(*stats, fieldStat(fieldPath, p.Value, values, present, len(samples)))

		switch p.Value.Type {
		case "object":
			walk(p.Value, fieldPath, nonNull(values), depth+1, stats)
		case "array":
			walk(p.Value.Items, fieldPath+"[]", flatten(values), depth+1, stats)
		}
	}
}

// fieldValues returns the values of key in each object sample and how many
// samples carried it.
func fieldValues(key string, samples []any) ([]any, int) {
	var values []any
	for _, sample := range samples {
		obj, ok := sample.(map[string]any)
		if !ok {
			continue
		}
		if v, exists := obj[key]; exists {
			values = append(values, v)
		}
	}
	return values, len(values)
}

func nonNull(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func flatten(values []any) []any {
	var out []any
	for _, v := range values {
		if items, ok := v.([]any); ok {
			out = append(out, nonNull(items)...)
		}
	}
	return out
}

func fieldStat(path string, s *jsonschema.Schema, values []any, present, total int) FieldStat {
	stat := FieldStat{Path: path, Type: typeName(s)}
	if total > 0 {
		stat.Frequency = float64(present) / float64(total)
	}

	distinct := make(map[string]bool)
	var strs []string
	nulls := 0
	for _, v := range values {
		if v == nil {
			nulls++
			continue
		}
		key := fmt.Sprintf("%v", v)
		if !distinct[key] {
			distinct[key] = true
			// Nested values are described by their child rows.
			switch v.(type) {
			case map[string]any, []any:
			default:
				if len(stat.Examples) < maxExamples {
					stat.Examples = append(stat.Examples, v)
				}
			}
		}
		if str, ok := v.(string); ok {
			strs = append(strs, str)
		}
	}

	stat.Required = present == total && nulls == 0
	stat.Nullable = nulls > 0
	stat.DistinctCount = len(distinct)
	if stat.Type == "string" && len(strs) >= minSamplesForFormat {
		stat.Format, stat.EnumValues = detectFormat(strs)
	}
	return stat
}

func detectFormat(values []string) (string, []string) {
	for _, f := range formats {
		if allMatch(f.re, values) {
			return f.name, nil
		}
	}

	distinct := make(map[string]bool)
	for _, v := range values {
		distinct[v] = true
	}
	if len(distinct) > maxEnumDistinctValues {
		return "", nil
	}
	enum := make([]string, 0, len(distinct))
	for v := range distinct {
		enum = append(enum, v)
	}
	sort.Strings(enum)
	return "enum", enum
}

func allMatch(re *regexp.Regexp, values []string) bool {
	for _, v := range values {
		if !re.MatchString(v) {
			return false
		}
	}
	return true
}

func typeName(s *jsonschema.Schema) string {
	if s.Type != "" {
		return s.Type
	}
	if len(s.AnyOf) > 0 {
		names := make([]string, 0, len(s.AnyOf))
		for _, v := range s.AnyOf {
			if v.Type != "" {
				names = append(names, v.Type)
			}
		}
		return strings.Join(names, "|")
	}
	return "unknown"
}
