package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/pkg/jsonschema"
	"github.com/usestring/hyper-mcp/pkg/types"
)

// InferSchemaInput is the input for hyper_infer_schema.
type InferSchemaInput struct {
	ResultSetID          string   `json:"result_set_id" jsonschema:"required,Result set from a list or query tool"`
	IgnoreFields         []string `json:"ignore_fields,omitempty" jsonschema:"Top-level fields to leave out, e.g. _rev"`
	AdditionalProperties *bool    `json:"additional_properties,omitempty" jsonschema:"Set additionalProperties on every object schema"`
	SkipFieldStats       bool     `json:"skip_field_stats,omitempty" jsonschema:"Return the schema only"`
}

// ToolInferSchema infers a JSON Schema and per-field statistics from the
// documents of a stored result set.
func ToolInferSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferSchemaInput) (*sdkmcp.CallToolResult, types.InferSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferSchemaInput) (*sdkmcp.CallToolResult, types.InferSchemaOutput, error) {
		rs, err := d.ResultSet(input.ResultSetID)
		if err != nil {
			return nil, types.InferSchemaOutput{}, err
		}
		docs := rs.Maps()
		if limit := d.Config.MaxInferDocs; limit > 0 && len(docs) > limit {
			docs = docs[:limit]
		}
		if len(docs) == 0 {
			return nil, types.InferSchemaOutput{}, ErrInvalidInput("result set is empty")
		}

		opts := jsonschema.DefaultOptions()
		opts.IgnoreFields = input.IgnoreFields
		opts.AdditionalProperties = input.AdditionalProperties
		inferred := jsonschema.InferDocs(docs, opts)

		schema, err := types.ToAny(inferred.Schema)
		if err != nil {
			return nil, types.InferSchemaOutput{}, fmt.Errorf("encoding schema: %w", err)
		}

		out := types.InferSchemaOutput{
			ResultSetID: rs.ID,
			DocCount:    inferred.DocCount,
			AllMatch:    inferred.AllMatch,
			Schema:      schema,
			Hint:        fmt.Sprintf("Pass the schema to hyper_validate_docs(result_set_id=%q, schema=...) after editing it, or use hyper_jq to pull out fields.", rs.ID),
		}
		if !input.SkipFieldStats {
			out.FieldStats = jsonschema.FieldStats(inferred.Schema, docs)
		}
		return nil, out, nil
	}
}
