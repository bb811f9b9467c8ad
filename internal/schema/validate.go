// Package schema validates hyper documents against JSON Schema.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/hyper-mcp/pkg/types"
)

// Validator validates JSON data against a schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles a JSON Schema given as JSON text.
func NewValidator(schemaJSON string) (*Validator, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON Schema: %w", err)
	}
	return NewValidatorFromValue(doc)
}

// NewValidatorFromValue compiles an already decoded JSON Schema, such as one
// produced by schema inference and round-tripped through JSON.
func NewValidatorFromValue(doc any) (*Validator, error) {
	if _, ok := doc.(map[string]any); !ok {
		if _, isBool := doc.(bool); !isBool {
			return nil, fmt.Errorf("JSON Schema must be an object or boolean, got %T", doc)
		}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate validates raw JSON against the schema.
func (v *Validator) Validate(data []byte) *types.ValidationResult {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &types.ValidationResult{
			Valid:  false,
			Errors: []string{fmt.Sprintf("invalid JSON: %s", err.Error())},
		}
	}
	return v.ValidateValue(value)
}

// ValidateValue validates an already-parsed value against the schema.
func (v *Validator) ValidateValue(value any) *types.ValidationResult {
	if v == nil || v.schema == nil {
		return &types.ValidationResult{
			Valid:  false,
			Errors: []string{"schema not compiled"},
		}
	}

	err := v.schema.Validate(value)
	if err == nil {
		return &types.ValidationResult{Valid: true}
	}
	return &types.ValidationResult{
		Valid:  false,
		Errors: extractValidationErrors(err),
	}
}

// ValidateDocs validates each document and returns per-document results in
// input order, labelled by id when one is known.
func (v *Validator) ValidateDocs(docs []map[string]any, ids []string) *types.ValidateDocsOutput {
	out := &types.ValidateDocsOutput{Results: make([]types.DocValidation, 0, len(docs))}
	for i, doc := range docs {
		r := v.ValidateValue(doc)
		dv := types.DocValidation{Index: i, Valid: r.Valid, Errors: r.Errors}
		if i < len(ids) {
			dv.ID = ids[i]
		}
		out.Results = append(out.Results, dv)
		if r.Valid {
			out.Summary.Valid++
		} else {
			out.Summary.Invalid++
		}
	}
	out.Summary.Total = len(docs)
	out.Summary.AllMatch = len(docs) > 0 && out.Summary.Invalid == 0
	out.CommonErrors = commonErrors(out.Results)
	return out
}

// commonErrors counts identical messages across documents, most frequent
// first.
func commonErrors(results []types.DocValidation) []types.CommonError {
	counts := make(map[string]int)
	for _, r := range results {
		for _, e := range r.Errors {
			counts[e]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	out := make([]types.CommonError, 0, len(counts))
	for e, n := range counts {
		out = append(out, types.CommonError{Error: e, Frequency: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Error < out[j].Error
	})
	return out
}

// extractValidationErrors extracts human-readable error messages from a validation error.
func extractValidationErrors(err error) []string {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractDetailedErrors(validationErr)
	}
	return []string{err.Error()}
}

// printer is a default English printer for localized error messages.
var printer = message.NewPrinter(language.English)

// extractDetailedErrors flattens a ValidationError into "path: message"
// lines, deduplicated and sorted by path.
func extractDetailedErrors(err *jsonschema.ValidationError) []string {
	errorsByPath := make(map[string][]string)
	collectErrors(err, errorsByPath)

	paths := make([]string, 0, len(errorsByPath))
	for p := range errorsByPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var result []string
	for _, path := range paths {
		seen := make(map[string]bool)
		for _, msg := range errorsByPath[path] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	return result
}

// collectErrors recursively collects leaf errors (those without causes).
func collectErrors(err *jsonschema.ValidationError, errorsByPath map[string][]string) {
	instancePath := ""
	if len(err.InstanceLocation) > 0 {
		instancePath = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		errMsg := err.ErrorKind.LocalizedString(printer)
		// $ref wrappers carry no information of their own.
		if !strings.HasPrefix(errMsg, "$ref ") && !strings.HasPrefix(errMsg, "doesn't validate with") {
			errorsByPath[instancePath] = append(errorsByPath[instancePath], errMsg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, errorsByPath)
	}
}
