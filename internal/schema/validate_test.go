package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

const movieSchema = `{
	"type": "object",
	"properties": {
		"_id": {"type": "string"},
		"title": {"type": "string"},
		"year": {"type": "integer"}
	},
	"required": ["_id", "title"]
}`

func TestValidator_JSONSchema(t *testing.T) {
	validator, err := NewValidator(movieSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := validator.Validate([]byte(`{"_id": "movie-1", "title": "Ghostbusters", "year": 1984}`))
	if !result.Valid {
		t.Errorf("expected valid, got errors: %v", result.Errors)
	}

	result = validator.Validate([]byte(`{"_id": "movie-1"}`))
	if result.Valid {
		t.Error("expected invalid for missing required field")
	}

	result = validator.Validate([]byte(`{"_id": "movie-1", "title": "Dune", "year": "1965"}`))
	if result.Valid {
		t.Error("expected invalid for wrong type")
	}
	if len(result.Errors) == 0 || !strings.HasPrefix(result.Errors[0], "/year") {
		t.Errorf("expected error at /year, got %v", result.Errors)
	}
}

func TestValidator_InvalidJSON(t *testing.T) {
	validator, err := NewValidator(movieSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := validator.Validate([]byte(`{"_id":`))
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if !strings.Contains(result.Errors[0], "invalid JSON") {
		t.Errorf("unexpected error: %v", result.Errors)
	}
}

func TestNewValidator_BadSchema(t *testing.T) {
	if _, err := NewValidator(`not json`); err == nil {
		t.Error("expected error for unparseable schema")
	}
	if _, err := NewValidator(`[1, 2]`); err == nil {
		t.Error("expected error for non-object schema")
	}
	if _, err := NewValidator(`{"type": 12}`); err == nil {
		t.Error("expected error for uncompilable schema")
	}
}

func TestNewValidatorFromValue(t *testing.T) {
	var doc any
	if err := json.Unmarshal([]byte(movieSchema), &doc); err != nil {
		t.Fatal(err)
	}
	validator, err := NewValidatorFromValue(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r := validator.ValidateValue(map[string]any{"_id": "a", "title": "b"}); !r.Valid {
		t.Errorf("expected valid, got %v", r.Errors)
	}
}

func TestValidator_ValidateDocs(t *testing.T) {
	validator, err := NewValidator(movieSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs := []map[string]any{
		{"_id": "movie-1", "title": "Ghostbusters"},
		{"_id": "movie-2"},
		{"_id": "movie-3", "title": "Dune", "year": "soon"},
	}
	out := validator.ValidateDocs(docs, []string{"movie-1", "movie-2", "movie-3"})

	if out.Summary.Total != 3 || out.Summary.Valid != 1 || out.Summary.Invalid != 2 {
		t.Errorf("unexpected summary: %+v", out.Summary)
	}
	if out.Results[1].ID != "movie-2" || out.Results[1].Valid {
		t.Errorf("unexpected result for movie-2: %+v", out.Results[1])
	}
	if out.Results[2].Index != 2 {
		t.Errorf("expected index 2, got %d", out.Results[2].Index)
	}
	if out.Summary.AllMatch {
		t.Error("AllMatch should be false with invalid documents")
	}
	if len(out.CommonErrors) == 0 {
		t.Error("expected common errors to be collected")
	}
}

func TestValidator_NilSchema(t *testing.T) {
	var v *Validator
	if r := v.ValidateValue(map[string]any{}); r.Valid {
		t.Error("expected invalid for nil validator")
	}
}
