package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/internal/schema"
	"github.com/usestring/hyper-mcp/pkg/types"
)

// ValidateDocsInput is the input for hyper_validate_docs.
type ValidateDocsInput struct {
	ResultSetID string `json:"result_set_id" jsonschema:"required,Result set from a list or query tool"`
	Schema      string `json:"schema" jsonschema:"required,JSON Schema document (draft 2020-12 unless $schema says otherwise)"`
	OnlyInvalid bool   `json:"only_invalid,omitempty" jsonschema:"Leave valid documents out of results"`
}

// ToolValidateDocs validates every document of a stored result set against
// a JSON Schema.
func ToolValidateDocs(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateDocsInput) (*sdkmcp.CallToolResult, types.ValidateDocsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateDocsInput) (*sdkmcp.CallToolResult, types.ValidateDocsOutput, error) {
		if input.Schema == "" {
			return nil, types.ValidateDocsOutput{}, ErrInvalidInput("schema is required")
		}
		validator, err := schema.NewValidator(input.Schema)
		if err != nil {
			return nil, types.ValidateDocsOutput{}, ErrInvalidInput("invalid schema: " + err.Error())
		}
		rs, err := d.ResultSet(input.ResultSetID)
		if err != nil {
			return nil, types.ValidateDocsOutput{}, err
		}

		out := validator.ValidateDocs(rs.Maps(), rs.IDs(d.Client.IDField()))
		out.ResultSetID = rs.ID
		if input.OnlyInvalid {
			invalid := make([]types.DocValidation, 0, out.Summary.Invalid)
			for _, r := range out.Results {
				if !r.Valid {
					invalid = append(invalid, r)
				}
			}
			out.Results = invalid
		}
		return nil, *out, nil
	}
}
