package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// serviceSections holds the per-service part of the guide.
var serviceSections = map[string]string{
	"data": "## Data\n" +
		"- `hyper_data_add(doc)` stores a document; put `id` (or `_id`) in it to choose the id. An existing id gives status 409.\n" +
		"- `hyper_data_get(id)` / `hyper_data_update(id, doc)` / `hyper_data_remove(id)` address one document.\n" +
		"- `hyper_data_list(start_key, end_key, keys, limit)` pages by id.\n" +
		"- `hyper_data_query(selector, fields, sort, limit, use_index)` matches fields exactly: `selector: {\"type\": \"movie\"}`.\n" +
		"- `hyper_data_index(name, fields)` before querying with `use_index`; an unknown index is a not-ok result.\n" +
		"- `hyper_data_bulk(docs)` reports per-document results; check each `ok`.\n",
	"cache": "## Cache\n" +
		"- `hyper_cache_set(key, value, ttl)` creates or replaces; ttl looks like `30s`, `5m`, `1h`.\n" +
		"- `hyper_cache_get(key)` returns the value; a missing or expired key is a 404 not-ok result.\n" +
		"- `hyper_cache_query(pattern)` lists `{key, value}` entries with glob keys such as `movie-*`.\n",
	"search": "## Search\n" +
		"- `hyper_search_add(key, doc)` indexes one document, `hyper_search_load(docs)` many.\n" +
		"- `hyper_search_query(query, fields, filter)` does full-text matching; `filter` narrows by exact field values.\n" +
		"- `hyper_search_remove(key)` drops a document from the index.\n",
	"storage": "## Storage\n" +
		"- `hyper_storage_download(name)` returns text for JSON/text/XML/YAML objects and base64 for the rest.\n" +
		"- Large objects are cut at `max_bytes` and flagged `truncated`.\n" +
		"- `hyper_storage_inspect(name)` outlines an object first: schema for JSON/YAML, columns for CSV, element tree for XML, ids and classes for HTML.\n" +
		"- `hyper_storage_query(name, expression, mode)` extracts values in place: `li.movie` (css), `//movie/title` (xpath), `.[].title` (jq, also over CSV rows), a regex with one capture group, or a form key.\n" +
		"- Uploads are not exposed as a tool; use the `hyper storage upload` command line.\n",
	"queue": "## Queue\n" +
		"- `hyper_queue_enqueue(job)` posts a job and returns its id.\n" +
		"- `hyper_queue_jobs(status: \"queued\")` lists waiting jobs, `status: \"errors\"` failed ones.\n",
}

var serviceOrder = []string{"data", "cache", "search", "storage", "queue"}

// HandleGuide serves the hyper usage guide. The service argument narrows
// the per-service part to one service.
func HandleGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var focus string
		if req != nil && req.Params != nil {
			focus = strings.ToLower(strings.TrimSpace(req.Params.Arguments["service"]))
		}
		if _, ok := serviceSections[focus]; focus != "" && !ok {
			return nil, fmt.Errorf("unknown service %q: expected one of %s", focus, strings.Join(serviceOrder, ", "))
		}

		var sb strings.Builder

		sb.WriteString("# Working with hyper\n\n")
		if cfg != nil && cfg.Connection != "" {
			fmt.Fprintf(&sb, "Connected to `%s`, domain `%s`.\n", cfg.Connection, cfg.Domain)
		}
		sb.WriteString("Call `hyper_info_services` first to see which services the instance enables.\n")

		// --- Results ---
		sb.WriteString("\n## Reading Results\n")
		sb.WriteString("- Every tool returns `ok` and `status`. `ok: false` is a normal answer (validation, conflict, not found) with the reason in `msg`; it is not a tool error.\n")
		sb.WriteString("- Tool errors carry a code: `HYPER_FATAL` (the backend failed, status 500 or above), `NOT_FOUND`, `INVALID_INPUT`, `TIMEOUT`, `HYPER_ERROR`.\n")
		sb.WriteString("- Retrying a `HYPER_FATAL` call is reasonable; retrying `ok: false` with the same input is not.\n")

		// --- Result sets ---
		sb.WriteString("\n## Result Sets (Token-Optimized)\n")
		sb.WriteString("- List and query tools keep the documents server-side and return `result_set_id`, `count` and a compacted `preview`\n")
		sb.WriteString("- Previews trim arrays and long strings; do not treat them as complete documents\n")
		sb.WriteString("- The full set is readable at `hyper://results/{result_set_id}`, but prefer the analysis tools below\n")
		sb.WriteString("- Result sets are evicted least-recently-used; list again if an id is reported missing\n")

		// --- Services ---
		sb.WriteString("\n")
		if focus != "" {
			sb.WriteString(serviceSections[focus])
		} else {
			for _, name := range serviceOrder {
				sb.WriteString(serviceSections[name])
				sb.WriteString("\n")
			}
		}

		// --- Analysis ---
		sb.WriteString("\n## Analyze a Result Set\n")
		sb.WriteString("1. **Shape**: `hyper_infer_schema(result_set_id)` - merged JSON Schema plus field_stats (frequency, nullable, formats, enums)\n")
		sb.WriteString("2. **Extract**: `hyper_jq(result_set_id, expression: \".title\")` - runs once per document; returns values and which documents matched\n")
		sb.WriteString("3. **Check**: `hyper_validate_docs(result_set_id, schema)` - per-document errors and the most common ones\n")

		// --- JQ Quick Reference ---
		sb.WriteString("\n## JQ Quick Reference\n")
		sb.WriteString("- `.title` - One field per document\n")
		sb.WriteString("- `select(.year > 1990) | ._id` - Ids of matching documents\n")
		sb.WriteString("- `.cast[]?.name` - Flatten nested arrays, skipping documents without them\n")
		sb.WriteString("- `keys` - Field names of each document\n")

		// --- Tips ---
		sb.WriteString("\n## Tips\n")
		sb.WriteString("- **Deduplicate**: Set `deduplicate: true` on `hyper_jq` for distinct values\n")
		sb.WriteString("- **Project early**: `hyper_data_query(fields: [...])` keeps result sets small\n")
		sb.WriteString("- **Single documents**: `hyper_data_get` already returns the whole document; the `hyper://data/{id}` resource is only needed for raw output\n")

		return &sdkmcp.GetPromptResult{
			Description: "Essential guide for the hyper tools",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
