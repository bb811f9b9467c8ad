package tools

import (
	"context"
	"fmt"
	"io"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/pkg/contenttype"
	"github.com/usestring/hyper-mcp/pkg/shape"
	"github.com/usestring/hyper-mcp/pkg/textquery"
	"github.com/usestring/hyper-mcp/pkg/types"
)

// StorageQueryInput is the input for hyper_storage_query.
type StorageQueryInput struct {
	Name       string `json:"name" jsonschema:"required,Object name"`
	Expression string `json:"expression" jsonschema:"required,Query expression in the chosen mode, e.g. 'li.movie' (css), '//movie/title' (xpath), '.[].title' (jq)"`
	Mode       string `json:"mode,omitempty" jsonschema:"css, xpath, regex, form or jq (default: chosen from the object's format)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Max values to return (default: DEFAULT_JQ_RESULTS)"`
}

// downloadObject reads up to maxBytes of a stored object. partial reports
// that the object was longer.
func (d *Deps) downloadObject(ctx context.Context, name string, maxBytes int) (obj textquery.Object, partial bool, err error) {
	body, err := d.Client.Storage().Download(ctx, name)
	if err != nil {
		return obj, false, WrapHyperError(err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, int64(maxBytes)+1))
	if err != nil {
		return obj, false, WrapHyperError(fmt.Errorf("reading %q: %w", name, err))
	}
	if len(data) > maxBytes {
		data = data[:maxBytes]
		partial = true
	}
	return textquery.Object{Name: name, ContentType: contenttype.ForName(name), Data: data}, partial, nil
}

// ToolStorageQuery extracts values from a stored object without returning
// its content.
func ToolStorageQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input StorageQueryInput) (*sdkmcp.CallToolResult, types.StorageQueryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input StorageQueryInput) (*sdkmcp.CallToolResult, types.StorageQueryOutput, error) {
		if input.Name == "" {
			return nil, types.StorageQueryOutput{}, ErrInvalidInput("name is required")
		}
		mode := textquery.Mode(input.Mode)
		if mode != "" {
			if err := d.TextQuery.Validate(input.Expression, mode); err != nil {
				return nil, types.StorageQueryOutput{}, ErrInvalidInput(err.Error())
			}
		}
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = d.Config.DefaultJQResults
		}

		obj, partial, err := d.downloadObject(ctx, input.Name, d.Config.DownloadMaxBytes)
		if err != nil {
			return nil, types.StorageQueryOutput{}, err
		}
		res, err := d.TextQuery.Query(obj, input.Expression, mode, maxResults)
		if err != nil {
			return nil, types.StorageQueryOutput{}, ErrInvalidInput(err.Error())
		}

		values := res.Values
		if values == nil {
			values = []any{}
		}
		return nil, types.StorageQueryOutput{
			Name:        input.Name,
			ContentType: obj.ContentType,
			Format:      res.Format,
			Mode:        string(res.Mode),
			Values:      values,
			Count:       res.Count,
			Truncated:   res.Truncated,
			Partial:     partial,
			Errors:      res.Errors,
		}, nil
	}
}

// ToolStorageInspect outlines the structure of a stored object.
func ToolStorageInspect(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input StorageNameInput) (*sdkmcp.CallToolResult, types.StorageInspectOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input StorageNameInput) (*sdkmcp.CallToolResult, types.StorageInspectOutput, error) {
		if input.Name == "" {
			return nil, types.StorageInspectOutput{}, ErrInvalidInput("name is required")
		}
		obj, partial, err := d.downloadObject(ctx, input.Name, d.Config.DownloadMaxBytes)
		if err != nil {
			return nil, types.StorageInspectOutput{}, err
		}

		opts := shape.DefaultOptions()
		if d.Config.MaxInferDocs > 0 {
			opts.MaxDocs = d.Config.MaxInferDocs
		}
		outline, err := types.ToAny(shape.Inspect(obj, opts))
		if err != nil {
			return nil, types.StorageInspectOutput{}, fmt.Errorf("encoding outline: %w", err)
		}
		return nil, types.StorageInspectOutput{
			Name:        input.Name,
			ContentType: obj.ContentType,
			Partial:     partial,
			Outline:     outline,
		}, nil
	}
}
