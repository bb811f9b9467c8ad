package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/types"
)

// DataIDInput addresses one document.
type DataIDInput struct {
	ID string `json:"id" jsonschema:"required,Document id"`
}

// DataAddInput is the input for hyper_data_add.
type DataAddInput struct {
	Doc map[string]any `json:"doc" jsonschema:"required,Document to store. Include the id field (id or _id) to choose the id yourself"`
}

// DataUpdateInput is the input for hyper_data_update.
type DataUpdateInput struct {
	ID  string         `json:"id" jsonschema:"required,Document id"`
	Doc map[string]any `json:"doc" jsonschema:"required,Replacement document"`
}

// DataListInput is the input for hyper_data_list.
type DataListInput struct {
	Limit      int      `json:"limit,omitempty" jsonschema:"Max documents (default: 25)"`
	StartKey   string   `json:"start_key,omitempty" jsonschema:"First id of the range (inclusive)"`
	EndKey     string   `json:"end_key,omitempty" jsonschema:"Last id of the range (inclusive)"`
	Keys       []string `json:"keys,omitempty" jsonschema:"Fetch exactly these ids"`
	Descending bool     `json:"descending,omitempty" jsonschema:"Reverse id order"`
}

// SortInput orders query results by one field.
type SortInput struct {
	Field string `json:"field" jsonschema:"Field name"`
	Desc  bool   `json:"desc,omitempty" jsonschema:"Descending order"`
}

// DataQueryInput is the input for hyper_data_query.
type DataQueryInput struct {
	Selector map[string]any `json:"selector" jsonschema:"required,Field equality selector, e.g. {\"type\": \"movie\"}"`
	Fields   []string       `json:"fields,omitempty" jsonschema:"Return only these fields"`
	Sort     []SortInput    `json:"sort,omitempty" jsonschema:"Sort order"`
	Limit    int            `json:"limit,omitempty" jsonschema:"Max documents"`
	UseIndex string         `json:"use_index,omitempty" jsonschema:"Name of an index created with hyper_data_index"`
}

// DataIndexInput is the input for hyper_data_index.
type DataIndexInput struct {
	Name   string   `json:"name" jsonschema:"required,Index name"`
	Fields []string `json:"fields" jsonschema:"required,Indexed fields"`
}

// DataBulkInput is the input for hyper_data_bulk.
type DataBulkInput struct {
	Docs []map[string]any `json:"docs" jsonschema:"required,Documents to write in one request"`
}

// ToolDataGet fetches one document.
func ToolDataGet(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataIDInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataIDInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.ID == "" {
			return nil, types.ResultOutput{}, ErrInvalidInput("id is required")
		}
		res, err := d.Client.Data().Get(ctx, input.ID)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		out := resultOutput(res)
		if out.OK {
			out.Resource = &types.ResourceRef{URI: DataResourceURI(input.ID), MIME: MimeJSON}
		}
		return nil, out, nil
	}
}

// ToolDataAdd stores a new document.
func ToolDataAdd(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataAddInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataAddInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.Doc == nil {
			return nil, types.ResultOutput{}, ErrInvalidInput("doc is required")
		}
		res, err := d.Client.Data().Add(ctx, input.Doc)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolDataUpdate replaces a document.
func ToolDataUpdate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataUpdateInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataUpdateInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.ID == "" || input.Doc == nil {
			return nil, types.ResultOutput{}, ErrInvalidInput("id and doc are required")
		}
		res, err := d.Client.Data().Update(ctx, input.ID, input.Doc)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolDataRemove deletes a document.
func ToolDataRemove(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataIDInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataIDInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.ID == "" {
			return nil, types.ResultOutput{}, ErrInvalidInput("id is required")
		}
		res, err := d.Client.Data().Remove(ctx, input.ID)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolDataList lists a page of documents into a result set.
func ToolDataList(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataListInput) (*sdkmcp.CallToolResult, types.DocsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataListInput) (*sdkmcp.CallToolResult, types.DocsOutput, error) {
		if input.Limit < 0 {
			return nil, types.DocsOutput{}, ErrInvalidInput("limit must not be negative")
		}
		limit := input.Limit
		if limit == 0 && len(input.Keys) == 0 {
			limit = d.Config.DefaultListLimit
		}

		res, err := d.Client.Data().List(ctx, hyper.ListOptions{
			Limit:      limit,
			StartKey:   input.StartKey,
			EndKey:     input.EndKey,
			Keys:       input.Keys,
			Descending: input.Descending,
		})
		if err != nil {
			return nil, types.DocsOutput{}, WrapHyperError(err)
		}
		return nil, d.docsOutput("data", "list", res), nil
	}
}

// ToolDataQuery runs a selector query into a result set.
func ToolDataQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataQueryInput) (*sdkmcp.CallToolResult, types.DocsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataQueryInput) (*sdkmcp.CallToolResult, types.DocsOutput, error) {
		if input.Selector == nil {
			return nil, types.DocsOutput{}, ErrInvalidInput("selector is required")
		}
		limit := input.Limit
		if maxDocs := d.Config.MaxQueryDocs; maxDocs > 0 && (limit <= 0 || limit > maxDocs) {
			limit = maxDocs
		}

		opts := hyper.QueryOptions{Fields: input.Fields, Limit: limit, UseIndex: input.UseIndex}
		for _, s := range input.Sort {
			if s.Field == "" {
				return nil, types.DocsOutput{}, ErrInvalidInput("sort field is required")
			}
			opts.Sort = append(opts.Sort, hyper.SortField{Field: s.Field, Desc: s.Desc})
		}

		res, err := d.Client.Data().Query(ctx, input.Selector, opts)
		if err != nil {
			return nil, types.DocsOutput{}, WrapHyperError(err)
		}
		return nil, d.docsOutput("data", "query", res), nil
	}
}

// ToolDataIndex creates a query index.
func ToolDataIndex(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataIndexInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataIndexInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.Name == "" || len(input.Fields) == 0 {
			return nil, types.ResultOutput{}, ErrInvalidInput("name and fields are required")
		}
		res, err := d.Client.Data().Index(ctx, input.Name, input.Fields)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolDataBulk writes many documents in one request.
func ToolDataBulk(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataBulkInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DataBulkInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if len(input.Docs) == 0 {
			return nil, types.ResultOutput{}, ErrInvalidInput("docs must not be empty")
		}
		docs := make([]hyper.Doc, len(input.Docs))
		for i, doc := range input.Docs {
			docs[i] = doc
		}
		res, err := d.Client.Data().Bulk(ctx, docs)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}
