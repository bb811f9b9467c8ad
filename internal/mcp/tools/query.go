package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/pkg/types"
)

// JQInput is the input for hyper_jq.
type JQInput struct {
	ResultSetID string `json:"result_set_id" jsonschema:"required,Result set from a list or query tool"`
	Expression  string `json:"expression" jsonschema:"required,JQ expression run against each document, e.g. .title or select(.year > 1990) | ._id"`
	Deduplicate bool   `json:"deduplicate,omitempty" jsonschema:"Remove duplicate values (default: false)"`
	MaxResults  int    `json:"max_results,omitempty" jsonschema:"Max values to return (default: 100)"`
}

// ToolJQ runs a jq expression over every document of a stored result set.
func ToolJQ(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input JQInput) (*sdkmcp.CallToolResult, types.JQOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input JQInput) (*sdkmcp.CallToolResult, types.JQOutput, error) {
		if input.Expression == "" {
			return nil, types.JQOutput{}, ErrInvalidInput("expression is required")
		}
		if err := d.Query.ValidateExpression(input.Expression); err != nil {
			return nil, types.JQOutput{}, ErrInvalidInput(err.Error())
		}
		rs, err := d.ResultSet(input.ResultSetID)
		if err != nil {
			return nil, types.JQOutput{}, err
		}

		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = d.Config.DefaultJQResults
		}

		docs := rs.Maps()
		if limit := d.Config.MaxQueryDocs; limit > 0 && len(docs) > limit {
			docs = docs[:limit]
		}
		ids := rs.IDs(d.Client.IDField())

		result, err := d.Query.QueryDocs(docs, ids, input.Expression, input.Deduplicate, maxResults)
		if err != nil {
			return nil, types.JQOutput{}, ErrInvalidInput(err.Error())
		}

		out := types.JQOutput{
			ResultSetID:    rs.ID,
			Values:         result.Values,
			Count:          len(result.Values),
			RawCount:       result.RawCount,
			MatchedIndices: result.MatchedIndices,
			Errors:         result.Errors,
			Truncated:      maxResults > 0 && len(result.Values) >= maxResults,
		}
		if result.Matched != nil {
			out.MatchedDocs = int(result.Matched.GetCardinality())
			it := result.Matched.Iterator()
			for it.HasNext() {
				if id := ids[it.Next()]; id != "" {
					out.MatchedIDs = append(out.MatchedIDs, id)
				}
			}
		}

		switch {
		case out.Count == 0 && len(out.Errors) == 0:
			out.Hint = "No values matched. Try '.' or 'keys' to inspect the documents, or hyper_infer_schema for their shape."
		case out.Truncated:
			out.Hint = fmt.Sprintf("Truncated at %d values. Narrow the expression with select(...) or raise max_results.", maxResults)
		}
		return nil, out, nil
	}
}
