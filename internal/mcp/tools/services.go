package tools

import (
	"context"
	"encoding/base64"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/pkg/contenttype"
	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/types"
)

// StorageNameInput addresses one storage object.
type StorageNameInput struct {
	Name string `json:"name" jsonschema:"required,Object name, e.g. reports/2024.csv"`
}

// StorageDownloadInput is the input for hyper_storage_download.
type StorageDownloadInput struct {
	Name     string `json:"name" jsonschema:"required,Object name"`
	MaxBytes int    `json:"max_bytes,omitempty" jsonschema:"Max bytes to return (default: DOWNLOAD_MAX_BYTES)"`
}

// QueueEnqueueInput is the input for hyper_queue_enqueue.
type QueueEnqueueInput struct {
	Job any `json:"job" jsonschema:"required,Job payload posted to the queue target"`
}

// QueueJobsInput is the input for hyper_queue_jobs.
type QueueJobsInput struct {
	Status string `json:"status" jsonschema:"required,Which jobs to list: errors or queued"`
}

// InfoInput is the (empty) input for hyper_info_services.
type InfoInput struct{}

// ToolStorageDownload reads an object. Textual content is returned as text,
// everything else as base64. The content is capped at max_bytes.
func ToolStorageDownload(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input StorageDownloadInput) (*sdkmcp.CallToolResult, types.DownloadOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input StorageDownloadInput) (*sdkmcp.CallToolResult, types.DownloadOutput, error) {
		if input.Name == "" {
			return nil, types.DownloadOutput{}, ErrInvalidInput("name is required")
		}
		maxBytes := input.MaxBytes
		if maxBytes <= 0 || maxBytes > d.Config.DownloadMaxBytes {
			maxBytes = d.Config.DownloadMaxBytes
		}

		obj, partial, err := d.downloadObject(ctx, input.Name, maxBytes)
		if err != nil {
			return nil, types.DownloadOutput{}, err
		}
		data := obj.Data
		out := types.DownloadOutput{Name: input.Name, Truncated: partial}

		ct := obj.ContentType
		out.ContentType = ct
		out.Category = string(contenttype.Classify(ct))
		out.Size = len(data)
		if contenttype.IsTextual(ct, data) {
			out.Encoding = "text"
			out.Content = string(data)
		} else {
			out.Encoding = "base64"
			out.Content = base64.StdEncoding.EncodeToString(data)
		}
		return nil, out, nil
	}
}

// ToolStorageRemove deletes an object.
func ToolStorageRemove(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input StorageNameInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input StorageNameInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.Name == "" {
			return nil, types.ResultOutput{}, ErrInvalidInput("name is required")
		}
		res, err := d.Client.Storage().Remove(ctx, input.Name)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolQueueEnqueue posts a job.
func ToolQueueEnqueue(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueueEnqueueInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueueEnqueueInput) (*sdkmcp.CallToolResult, types.ResultOutput, error) {
		if input.Job == nil {
			return nil, types.ResultOutput{}, ErrInvalidInput("job is required")
		}
		res, err := d.Client.Queue().Enqueue(ctx, input.Job)
		if err != nil {
			return nil, types.ResultOutput{}, WrapHyperError(err)
		}
		return nil, resultOutput(res), nil
	}
}

// ToolQueueJobs lists failed or waiting jobs into a result set.
func ToolQueueJobs(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueueJobsInput) (*sdkmcp.CallToolResult, types.DocsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueueJobsInput) (*sdkmcp.CallToolResult, types.DocsOutput, error) {
		var (
			res hyper.Result
			err error
		)
		switch input.Status {
		case "errors":
			res, err = d.Client.Queue().Errors(ctx)
		case "queued":
			res, err = d.Client.Queue().Queued(ctx)
		default:
			return nil, types.DocsOutput{}, ErrInvalidInput("status must be 'errors' or 'queued'")
		}
		if err != nil {
			return nil, types.DocsOutput{}, WrapHyperError(err)
		}
		return nil, d.docsOutput("queue", input.Status, res), nil
	}
}

// ToolInfoServices describes the connected hyper instance.
func ToolInfoServices(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InfoInput) (*sdkmcp.CallToolResult, types.InfoOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InfoInput) (*sdkmcp.CallToolResult, types.InfoOutput, error) {
		res, err := d.Client.Info().Services(ctx)
		if err != nil {
			return nil, types.InfoOutput{}, WrapHyperError(err)
		}

		out := types.InfoOutput{
			OK:         res.IsOK(),
			Status:     res.StatusCode(),
			Connection: d.Client.Connection().Redacted(),
			Domain:     d.Client.Domain(),
		}
		if info, ok := res.(*hyper.InfoResult); ok {
			out.Name = info.Name
			out.Version = info.Version
			out.Services = info.Services
		} else {
			out.Msg = resultOutput(res).Msg
		}
		return nil, out, nil
	}
}
