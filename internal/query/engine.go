// Package query provides JQ-based querying over hyper documents.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/itchyny/gojq"
)

// Engine executes JQ queries against JSON data.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// QueryResult contains the results of a JQ query.
type QueryResult struct {
	Values         []any          `json:"values"`                    // Extracted values
	Errors         []string       `json:"errors,omitempty"`          // Per-document errors (e.g., type mismatch)
	RawCount       int            `json:"raw_count"`                 // Count before deduplication
	MatchedIndices []int          `json:"matched_indices,omitempty"` // Indices of documents that produced values
	LabelCounts    map[string]int `json:"label_counts,omitempty"`    // Value count per label

	// Matched holds MatchedIndices as a bitmap for set operations.
	Matched *roaring.Bitmap `json:"-"`
}

func compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// Query executes a JQ expression against one raw JSON body, such as a
// downloaded storage object.
func (e *Engine) Query(data []byte, expression string, deduplicate bool, maxResults int) (*QueryResult, error) {
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid JSON data: %w", err)
	}
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}
	return run(code, []any{input}, nil, deduplicate, maxResults), nil
}

// QueryDocs executes a JQ expression against each document of a result set.
// Labels identify each document in error messages and label counts (e.g.,
// document ids); missing labels fall back to doc[i].
func (e *Engine) QueryDocs(docs []map[string]any, labels []string, expression string, deduplicate bool, maxResults int) (*QueryResult, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}
	inputs := make([]any, len(docs))
	for i, d := range docs {
		inputs[i] = d
	}
	return run(code, inputs, labels, deduplicate, maxResults), nil
}

func run(code *gojq.Code, inputs []any, labels []string, deduplicate bool, maxResults int) *QueryResult {
	result := &QueryResult{
		Values:      make([]any, 0),
		Errors:      make([]string, 0),
		LabelCounts: make(map[string]int),
		Matched:     roaring.New(),
	}

	seen := make(map[string]bool)
	seenErrors := make(map[string]bool)

	for i, input := range inputs {
		if maxResults > 0 && len(result.Values) >= maxResults {
			break
		}

		label := fmt.Sprintf("doc[%d]", i)
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}

		iter := code.Run(input)
		for {
			if maxResults > 0 && len(result.Values) >= maxResults {
				break
			}

			v, ok := iter.Next()
			if !ok {
				break
			}

			if err, isErr := v.(error); isErr {
				errMsg := formatJQError(label, err)
				if !seenErrors[errMsg] {
					result.Errors = append(result.Errors, errMsg)
					seenErrors[errMsg] = true
				}
				continue
			}

			if v == nil {
				continue
			}

			result.RawCount++
			result.LabelCounts[label]++
			result.Matched.Add(uint32(i))

			if deduplicate {
				key := valueKey(v)
				if seen[key] {
					continue
				}
				seen[key] = true
			}

			result.Values = append(result.Values, v)
		}
	}

	for _, idx := range result.Matched.ToArray() {
		result.MatchedIndices = append(result.MatchedIndices, int(idx))
	}
	if len(inputs) == 1 && labels == nil {
		result.LabelCounts = nil
	}
	return result
}

// formatJQError creates a helpful error message for JQ execution errors.
//
// Runtime JQ errors (like "cannot iterate over: null") are plain errors
// without typed wrappers in gojq, so hints are picked by string matching.
// They decorate display messages only.
func formatJQError(label string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in this document)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}

	return fmt.Sprintf("%s: %s%s", label, errStr, hint)
}

// valueKey creates a string key for deduplication.
func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64:
		return fmt.Sprintf("n:%v", val)
	case int:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}

// ValidateExpression checks if a JQ expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return fmt.Errorf("invalid jq expression: %w", err)
	}

	if _, err := gojq.Compile(query); err != nil {
		return fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return nil
}
