package types

import "github.com/usestring/hyper-mcp/pkg/jsonschema"

// ValidationResult contains the result of validating a single value.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// DocValidation is the validation result for one document of a result set.
type DocValidation struct {
	Index  int      `json:"index"`
	ID     string   `json:"id,omitempty"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// DocValidationSummary counts valid and invalid documents.
type DocValidationSummary struct {
	Total    int  `json:"total"`
	Valid    int  `json:"valid"`
	Invalid  int  `json:"invalid"`
	AllMatch bool `json:"all_match"`
}

// CommonError is a validation error shared by several documents.
type CommonError struct {
	Error     string `json:"error"`
	Frequency int    `json:"frequency"`
}

// ValidateDocsOutput is the output of hyper_validate_docs.
type ValidateDocsOutput struct {
	ResultSetID  string               `json:"result_set_id,omitempty"`
	Summary      DocValidationSummary `json:"summary"`
	Results      []DocValidation      `json:"results,omitzero"`
	CommonErrors []CommonError        `json:"common_errors,omitempty"`
}

// InferSchemaOutput is the output of hyper_infer_schema.
type InferSchemaOutput struct {
	ResultSetID string                 `json:"result_set_id"`
	DocCount    int                    `json:"doc_count"`
	AllMatch    bool                   `json:"all_match"`
	Schema      any                    `json:"schema,omitempty"`
	FieldStats  []jsonschema.FieldStat `json:"field_stats,omitempty"`
	Hint        string                 `json:"hint,omitempty"`
}

// JQOutput is the output of hyper_jq.
type JQOutput struct {
	ResultSetID    string   `json:"result_set_id"`
	Values         []any    `json:"values,omitzero"`
	Count          int      `json:"count"`
	RawCount       int      `json:"raw_count"`
	MatchedDocs    int      `json:"matched_docs"`
	MatchedIndices []int    `json:"matched_indices,omitempty"`
	MatchedIDs     []string `json:"matched_ids,omitempty"`
	Errors         []string `json:"errors,omitempty"`
	Truncated      bool     `json:"truncated,omitempty"`
	Hint           string   `json:"hint,omitempty"`
}
