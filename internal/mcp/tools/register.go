package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_info_services",
		Description: "Describe the connected hyper instance: name, version, enabled services, the redacted connection string and the data domain in use. Call this first to learn which services are available.",
	}, ToolInfoServices(d))

	// Data
	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_data_get",
		Description: "Fetch one document by id. Returns {ok, status, doc} or {ok: false, status: 404, msg} when the id is unknown.",
	}, ToolDataGet(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_data_add",
		Description: "Store a new document. Returns the new id. A document whose id already exists is rejected with status 409.",
	}, ToolDataAdd(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_data_update",
		Description: "Replace the document stored under id.",
	}, ToolDataUpdate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_data_remove",
		Description: "Delete the document stored under id.",
	}, ToolDataRemove(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_data_list",
		Description: "List documents by id range or explicit keys. The documents are kept as a result set: the response carries result_set_id, count and a compacted preview. Pass result_set_id to hyper_jq, hyper_infer_schema or hyper_validate_docs for analysis.",
	}, ToolDataList(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_data_query",
		Description: "Find documents matching a field equality selector, with optional projection, sort, limit and index. Returns a result set like hyper_data_list.",
	}, ToolDataQuery(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_data_index",
		Description: "Create a named index over fields for use with hyper_data_query(use_index=...).",
	}, ToolDataIndex(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_data_bulk",
		Description: "Write many documents in one request. Returns a per-document results array; a failed document does not fail the call.",
	}, ToolDataBulk(d))

	// Cache
	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_cache_get",
		Description: "Read the value cached under key.",
	}, ToolCacheGet(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_cache_set",
		Description: "Create or replace the value cached under key, with an optional ttl such as 5m.",
	}, ToolCacheSet(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_cache_remove",
		Description: "Delete the value cached under key.",
	}, ToolCacheRemove(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_cache_query",
		Description: "List cache entries whose keys match a glob pattern. Returns a result set of {key, value} documents.",
	}, ToolCacheQuery(d))

	// Search
	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_search_query",
		Description: "Full-text search over indexed documents, optionally restricted to fields and narrowed by an exact-match filter. Returns a result set of matches.",
	}, ToolSearchQuery(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_search_add",
		Description: "Index one document under key.",
	}, ToolSearchAdd(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_search_remove",
		Description: "Remove the document indexed under key.",
	}, ToolSearchRemove(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_search_load",
		Description: "Index many documents in one request. Returns per-document results.",
	}, ToolSearchLoad(d))

	// Storage
	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_storage_download",
		Description: "Download a stored object. Textual content (JSON, text, XML, YAML) is returned as text, anything else as base64. Content is capped at max_bytes and flagged truncated.",
	}, ToolStorageDownload(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_storage_remove",
		Description: "Delete a stored object.",
	}, ToolStorageRemove(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_storage_query",
		Description: "Extract values from a stored object without downloading it into the conversation: CSS selectors or XPath for HTML, XPath for XML, jq for JSON, YAML and CSV (rows keyed by header), form for urlencoded data, regex for any text. mode defaults from the object's format.",
	}, ToolStorageQuery(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_storage_inspect",
		Description: "Outline a stored object's structure before querying it: JSON Schema and field stats for JSON/YAML, columns for CSV, the element tree for XML, title, ids, classes and forms for HTML.",
	}, ToolStorageInspect(d))

	// Queue
	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_queue_enqueue",
		Description: "Post a job to the queue. Returns the job id.",
	}, ToolQueueEnqueue(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_queue_jobs",
		Description: "List queue jobs by status: 'errors' for failed jobs, 'queued' for jobs waiting to run. Returns a result set.",
	}, ToolQueueJobs(d))

	// Analysis over stored result sets
	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_jq",
		Description: "Run a JQ expression against each document of a result set. Returns values, matched document indices and ids, and per-document errors. Use this instead of reading whole result sets.",
	}, ToolJQ(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_infer_schema",
		Description: "Infer a merged JSON Schema from the documents of a result set, plus field_stats (frequency, required/optional, nullable, distinct counts, formats, enums).",
	}, ToolInferSchema(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "hyper_validate_docs",
		Description: "Validate every document of a result set against a JSON Schema. Returns a summary, per-document errors and the most common errors.",
	}, ToolValidateDocs(d))
}
