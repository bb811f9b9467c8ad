// Package jsonschema infers JSON Schemas (Draft 2020-12) from hyper
// documents.
package jsonschema

import (
	"encoding/json"
	"math"
	"slices"
	"sort"

	"github.com/invopop/jsonschema"
)

// Inferred is a schema inferred from a set of documents.
type Inferred struct {
	Schema   *jsonschema.Schema `json:"schema"`
	DocCount int                `json:"doc_count"`
	AllMatch bool               `json:"all_match"` // every document had the same shape
}

// Options controls inference.
type Options struct {
	// Required marks fields present and non-null in every document as required.
	Required bool
	// AdditionalProperties, when set, is applied to every object schema.
	AdditionalProperties *bool
	// IgnoreFields are dropped from top-level documents before inference,
	// e.g. revision markers the backend adds.
	IgnoreFields []string
}

// DefaultOptions returns the default inference options.
func DefaultOptions() *Options {
	return &Options{Required: true}
}

// InferDocs infers one schema covering every document. It returns nil for
// an empty list.
func InferDocs(docs []map[string]any, opts *Options) *Inferred {
	if len(docs) == 0 {
		return nil
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	samples := make([]any, len(docs))
	schemas := make([]*jsonschema.Schema, len(docs))
	for i, d := range docs {
		samples[i] = withoutFields(d, opts.IgnoreFields)
		schemas[i] = FromValue(samples[i])
	}

	merged := merge(schemas)
	if opts.Required {
		markRequired(merged, samples)
	}
	if opts.AdditionalProperties != nil {
		setAdditional(merged, *opts.AdditionalProperties)
	}

	return &Inferred{
		Schema:   merged,
		DocCount: len(docs),
		AllMatch: sameShape(schemas),
	}
}

func withoutFields(doc map[string]any, drop []string) map[string]any {
	if len(drop) == 0 {
		return doc
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if !slices.Contains(drop, k) {
			out[k] = v
		}
	}
	return out
}

func sameShape(schemas []*jsonschema.Schema) bool {
	first, _ := json.Marshal(schemas[0])
	for _, s := range schemas[1:] {
		other, _ := json.Marshal(s)
		if string(first) != string(other) {
			return false
		}
	}
	return true
}

// FromValue infers the schema of a single decoded JSON value.
func FromValue(v any) *jsonschema.Schema {
	switch val := v.(type) {
	case nil:
		return &jsonschema.Schema{Type: "null"}
	case bool:
		return &jsonschema.Schema{Type: "boolean"}
	case float64:
		if isWhole(val) {
			return &jsonschema.Schema{Type: "integer"}
		}
		return &jsonschema.Schema{Type: "number"}
	case int, int32, int64:
		return &jsonschema.Schema{Type: "integer"}
	case string:
		return &jsonschema.Schema{Type: "string"}
	case []any:
		s := &jsonschema.Schema{Type: "array"}
		if len(val) > 0 {
			items := make([]*jsonschema.Schema, len(val))
			for i, item := range val {
				items[i] = FromValue(item)
			}
			s.Items = merge(items)
		}
		return s
	case map[string]any:
		s := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
		for _, k := range sortedKeys(val) {
			s.Properties.Set(k, FromValue(val[k]))
		}
		return s
	default:
		return &jsonschema.Schema{}
	}
}

func isWhole(f float64) bool {
	return math.Trunc(f) == f && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// merge combines schemas of the same position into one. Objects merge
// property-wise, arrays merge their items, and differing types become anyOf.
// An integer/number mix widens to number.
func merge(schemas []*jsonschema.Schema) *jsonschema.Schema {
	switch len(schemas) {
	case 0:
		return &jsonschema.Schema{}
	case 1:
		return schemas[0]
	}

	var objects, arrays []*jsonschema.Schema
	scalars := make(map[string]bool)
	for _, s := range schemas {
		switch s.Type {
		case "":
		case "object":
			objects = append(objects, s)
		case "array":
			arrays = append(arrays, s)
		default:
			scalars[s.Type] = true
		}
	}
	if scalars["integer"] && scalars["number"] {
		delete(scalars, "integer")
	}

	var variants []*jsonschema.Schema
	if len(objects) > 0 {
		variants = append(variants, mergeObjects(objects))
	}
	if len(arrays) > 0 {
		variants = append(variants, mergeArrays(arrays))
	}
	names := make([]string, 0, len(scalars))
	for t := range scalars {
		names = append(names, t)
	}
	sort.Strings(names)
	for _, t := range names {
		variants = append(variants, &jsonschema.Schema{Type: t})
	}

	switch len(variants) {
	case 0:
		return &jsonschema.Schema{}
	case 1:
		return variants[0]
	default:
		return &jsonschema.Schema{AnyOf: variants}
	}
}

func mergeObjects(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}
	byKey := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		if s.Properties == nil {
			continue
		}
		for p := s.Properties.Oldest(); p != nil; p = p.Next() {
			byKey[p.Key] = append(byKey[p.Key], p.Value)
		}
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
	for _, k := range keys {
		out.Properties.Set(k, merge(byKey[k]))
	}
	return out
}

func mergeArrays(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}
	var items []*jsonschema.Schema
	for _, s := range schemas {
		if s.Items != nil {
			items = append(items, s.Items)
		}
	}
	out := &jsonschema.Schema{Type: "array"}
	if len(items) > 0 {
		out.Items = merge(items)
	}
	return out
}

// markRequired sets Required on object schemas to the fields that are
// present and non-null in every sample, recursing into nested objects and
// arrays of objects.
func markRequired(s *jsonschema.Schema, samples []any) {
	if s == nil || s.Type != "object" || s.Properties == nil {
		return
	}

	objs := make([]map[string]any, 0, len(samples))
	for _, sample := range samples {
		if obj, ok := sample.(map[string]any); ok {
			objs = append(objs, obj)
		}
	}
	if len(objs) == 0 {
		return
	}

	var required []string
	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		always := true
		var nested []any
		for _, obj := range objs {
			v, ok := obj[p.Key]
			if !ok || v == nil {
				always = false
				continue
			}
			if items, isList := v.([]any); isList && p.Value.Type == "array" {
				for _, item := range items {
					if item != nil {
						nested = append(nested, item)
					}
				}
			} else {
				nested = append(nested, v)
			}
		}
		if always {
			required = append(required, p.Key)
		}

		switch p.Value.Type {
		case "object":
			markRequired(p.Value, nested)
		case "array":
			markRequired(p.Value.Items, nested)
		}
	}
	sort.Strings(required)
	s.Required = required
}

func setAdditional(s *jsonschema.Schema, allowed bool) {
	if s == nil {
		return
	}
	if s.Type == "object" {
		s.AdditionalProperties = jsonschema.FalseSchema
		if allowed {
			s.AdditionalProperties = jsonschema.TrueSchema
		}
		if s.Properties != nil {
			for p := s.Properties.Oldest(); p != nil; p = p.Next() {
				setAdditional(p.Value, allowed)
			}
		}
	}
	setAdditional(s.Items, allowed)
	for _, v := range s.AnyOf {
		setAdditional(v, allowed)
	}
}
