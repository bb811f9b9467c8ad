package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after checking that its output type serializes
// the way the SDK's inferred schema describes it. A mismatch panics at
// registration instead of failing every call.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema panics when the output type T cannot be returned as
// structured content:
//   - T is not a struct (structured content must be a JSON object);
//   - a field has its own MarshalJSON (json.RawMessage, hyper results,
//     inferred schemas), so the reflected schema describes the Go fields
//     while the wire form is something else;
//   - the zero value fails the inferred schema, typically a nil slice
//     marshaled as null where the schema expects an array.
//
// The untyped any output is accepted as is. Schema inference failures are
// left for the SDK to report.
func CheckOutputSchema[T any](toolName string) {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return
	}
	elem := rt
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		panic(fmt.Sprintf("tool %q: output type %s is not a struct", toolName, elem))
	}

	if paths := findMarshalerFields(elem, nil, make(map[reflect.Type]bool)); len(paths) > 0 {
		panic(fmt.Sprintf(
			"tool %q: output type %s has custom JSON encoding at %s\n"+
				"  the inferred schema would not match the encoded value\n"+
				"  declare the field as any and fill it with types.ToAny(value)",
			toolName, elem, strings.Join(paths, ", "),
		))
	}

	schema, err := jsonschema.ForType(elem, &jsonschema.ForOptions{})
	if err != nil {
		return
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return
	}

	data, err := json.Marshal(reflect.Zero(elem).Interface())
	if err != nil {
		return
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return
	}
	if err := resolved.Validate(&v); err != nil {
		panic(fmt.Sprintf(
			"tool %q: zero value of %s fails its output schema: %v\n"+
				"  JSON: %s\n"+
				"  mark nil-defaulting slices omitzero or initialize them",
			toolName, elem, err, data,
		))
	}
}

var (
	marshalerType = reflect.TypeFor[json.Marshaler]()
	timeType      = reflect.TypeFor[time.Time]()
)

// customJSON reports whether t (or *t) encodes itself. time.Time is
// excluded: the schema generator already describes it as a string.
func customJSON(t reflect.Type) bool {
	if t == timeType {
		return false
	}
	return t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType)
}

// findMarshalerFields returns the paths of fields in t whose type has its
// own MarshalJSON. Interface fields are not followed.
func findMarshalerFields(t reflect.Type, path []string, visited map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Interface {
		return nil
	}
	if len(path) > 0 && customJSON(t) {
		return []string{strings.Join(path, ".")}
	}
	if visited[t] {
		return nil
	}
	visited[t] = true
	defer delete(visited, t)

	var found []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("json") == "-" {
				continue
			}
			found = append(found, findMarshalerFields(f.Type, append(path, f.Name), visited)...)
		}
	case reflect.Slice, reflect.Array:
		found = append(found, findMarshalerFields(t.Elem(), append(path, "[]"), visited)...)
	case reflect.Map:
		found = append(found, findMarshalerFields(t.Elem(), append(path, "[value]"), visited)...)
	}
	return found
}
