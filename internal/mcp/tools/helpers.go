// Package tools contains MCP tool implementations for hyper.
package tools

import (
	"fmt"
	"net/url"

	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/jsoncompact"
	"github.com/usestring/hyper-mcp/pkg/types"
)

// MIME type constant.
const MimeJSON = "application/json"

// Resource URI prefixes.
const (
	DataResourcePrefix    = "hyper://data/"
	CacheResourcePrefix   = "hyper://cache/"
	ResultsResourcePrefix = "hyper://results/"
)

// resultOutput converts any single-value result to its tool form.
func resultOutput(res hyper.Result) types.ResultOutput {
	out := types.ResultOutput{OK: res.IsOK(), Status: res.StatusCode()}
	switch r := res.(type) {
	case *hyper.NotOkResult:
		out.Msg = r.Msg
	case *hyper.NotOkDocsResult:
		out.Msg = r.Msg
	case *hyper.OkIDResult:
		out.ID = r.ID
	case *hyper.DocResult:
		out.Doc = map[string]any(r.Doc)
	case *hyper.BulkResult:
		out.Results = docsToAny(r.Results)
	case *hyper.SearchLoadOKResult:
		out.Results = docsToAny(r.Results)
	}
	return out
}

// docsOf extracts the document list carried by a list-shaped result.
func docsOf(res hyper.Result) []hyper.Doc {
	switch r := res.(type) {
	case *hyper.OkDocsResult:
		return r.Docs
	case *hyper.SearchQueryOKResult:
		return r.Matches
	case *hyper.QueueJobsResult:
		return r.Jobs
	}
	return nil
}

// docsOutput stores the documents of a list-shaped result and returns the
// set id with a compacted preview. Not-ok results are passed through.
func (d *Deps) docsOutput(service, operation string, res hyper.Result) types.DocsOutput {
	out := types.DocsOutput{OK: res.IsOK(), Status: res.StatusCode()}
	if !res.IsOK() {
		out.Msg = resultOutput(res).Msg
		return out
	}

	docs := docsOf(res)
	if docs == nil {
		docs = []hyper.Doc{}
	}
	rs := d.Results.Put(service, operation, docs)

	preview := jsoncompact.PreviewDocs(rs.Maps(), d.previewItems(), d.CompactOptions())
	out.ResultSetID = rs.ID
	out.Count = len(docs)
	out.Preview = preview.Docs
	out.Omitted = preview.Omitted
	out.Resource = &types.ResourceRef{
		URI:  ResultsResourcePrefix + rs.ID,
		MIME: MimeJSON,
		Hint: "Full result set. Prefer hyper_jq to extract fields instead of reading it whole.",
	}
	if len(docs) > 0 {
		out.Hint = fmt.Sprintf("Use hyper_jq(result_set_id=%q, expression=...) to extract values, or hyper_infer_schema to learn the document shape.", rs.ID)
	}
	return out
}

func docsToAny(docs []hyper.Doc) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = map[string]any(d)
	}
	return out
}

// DataResourceURI returns the resource URI of a data document.
func DataResourceURI(id string) string {
	return DataResourcePrefix + url.PathEscape(id)
}

// CacheResourceURI returns the resource URI of a cache key.
func CacheResourceURI(key string) string {
	return CacheResourcePrefix + url.PathEscape(key)
}
