package mcp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// LoggingMiddleware returns middleware that logs all incoming method calls.
// Tool calls are logged with the tool name. A tool error result is logged at
// warn level with its code, except HYPER_FATAL which is logged as an error
// since it means the backend itself failed.
func LoggingMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			start := time.Now()

			result, err := next(ctx, method, req)

			duration := time.Since(start)
			attrs := []slog.Attr{
				slog.String("method", method),
				slog.Int64("duration_ms", duration.Milliseconds()),
			}
			if call, ok := req.(*sdkmcp.CallToolRequest); ok && call.Params != nil {
				attrs = append(attrs, slog.String("tool", call.Params.Name))
			}

			switch {
			case err != nil:
				attrs = append(attrs, slog.String("error", err.Error()))
				slog.LogAttrs(ctx, slog.LevelError, "method call failed", attrs...)
			case isToolError(result):
				code := toolErrorCode(result.(*sdkmcp.CallToolResult))
				level := slog.LevelWarn
				if code == "HYPER_FATAL" {
					level = slog.LevelError
				}
				if code != "" {
					attrs = append(attrs, slog.String("code", code))
				}
				slog.LogAttrs(ctx, level, "tool returned an error", attrs...)
			default:
				slog.LogAttrs(ctx, slog.LevelInfo, "method call completed", attrs...)
			}

			return result, err
		}
	}
}

func isToolError(result sdkmcp.Result) bool {
	r, ok := result.(*sdkmcp.CallToolResult)
	return ok && r != nil && r.IsError
}

// toolErrorCode returns the CodedError code leading the result text
// ("NOT_FOUND: ..."), or "" for uncoded errors.
func toolErrorCode(r *sdkmcp.CallToolResult) string {
	for _, c := range r.Content {
		text, ok := c.(*sdkmcp.TextContent)
		if !ok {
			continue
		}
		code, _, found := strings.Cut(text.Text, ":")
		if found && code != "" && strings.ToUpper(code) == code && !strings.ContainsAny(code, " \t") {
			return code
		}
		return ""
	}
	return ""
}
