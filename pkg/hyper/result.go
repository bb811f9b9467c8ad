package hyper

import (
	"encoding/json"
	"maps"
)

// Doc is a JSON object as stored by a hyper service.
type Doc map[string]any

// ID returns the document id read from field, falling back to the other of
// "id" and "_id".
func (d Doc) ID(field string) string {
	if s, ok := d[field].(string); ok {
		return s
	}
	if s, ok := d[otherIDField(field)].(string); ok {
		return s
	}
	return ""
}

func otherIDField(field string) string {
	if field == "_id" {
		return "id"
	}
	return "_id"
}

// Result is one of the result variants returned by façade operations.
// The variant's type is the discriminant; IsOK agrees with it.
type Result interface {
	IsOK() bool
	StatusCode() int
}

// OkResult reports success without a payload.
type OkResult struct {
	Status int
}

// OkIDResult reports success with the id of the affected document.
type OkIDResult struct {
	Status  int
	ID      string
	IDField string // JSON field name for ID, "id" when empty
}

// OkDocsResult carries a list of documents.
type OkDocsResult struct {
	Status int
	Docs   []Doc
}

// NotOkResult reports a business failure (validation, conflict, not found).
// Msg is the backend's text as sent, empty when the body carried none.
type NotOkResult struct {
	Status int
	Msg    string
}

// NotOkDocsResult is the failed form of a docs operation. Docs is always
// empty and never nil.
type NotOkDocsResult struct {
	Status int
	Msg    string
	Docs   []Doc
}

// SearchQueryOKResult carries search matches.
type SearchQueryOKResult struct {
	Status  int
	Matches []Doc
}

// SearchLoadOKResult carries per-document outcomes of a search bulk load.
type SearchLoadOKResult struct {
	Status  int
	Results []Doc
}

// BulkResult carries per-document outcomes of a data bulk write.
type BulkResult struct {
	Status  int
	Results []Doc
}

// DocResult is a fetched document merged with the response status.
type DocResult struct {
	Status int
	Doc    Doc
}

// QueueJobsResult lists queue jobs filtered by status.
type QueueJobsResult struct {
	Status int
	Jobs   []Doc
}

// InfoResult describes the services a hyper instance exposes.
type InfoResult struct {
	Status   int
	Name     string
	Version  string
	Services []string
}

func (r *OkResult) IsOK() bool            { return true }
func (r *OkIDResult) IsOK() bool          { return true }
func (r *OkDocsResult) IsOK() bool        { return true }
func (r *NotOkResult) IsOK() bool         { return false }
func (r *NotOkDocsResult) IsOK() bool     { return false }
func (r *SearchQueryOKResult) IsOK() bool { return true }
func (r *SearchLoadOKResult) IsOK() bool  { return true }
func (r *BulkResult) IsOK() bool          { return true }
func (r *DocResult) IsOK() bool           { return true }
func (r *QueueJobsResult) IsOK() bool     { return true }
func (r *InfoResult) IsOK() bool          { return true }

func (r *OkResult) StatusCode() int            { return r.Status }
func (r *OkIDResult) StatusCode() int          { return r.Status }
func (r *OkDocsResult) StatusCode() int        { return r.Status }
func (r *NotOkResult) StatusCode() int         { return r.Status }
func (r *NotOkDocsResult) StatusCode() int     { return r.Status }
func (r *SearchQueryOKResult) StatusCode() int { return r.Status }
func (r *SearchLoadOKResult) StatusCode() int  { return r.Status }
func (r *BulkResult) StatusCode() int          { return r.Status }
func (r *DocResult) StatusCode() int           { return r.Status }
func (r *QueueJobsResult) StatusCode() int     { return r.Status }
func (r *InfoResult) StatusCode() int          { return r.Status }

type statusFields struct {
	OK     bool `json:"ok"`
	Status int  `json:"status"`
}

func (r *OkResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusFields{OK: true, Status: r.Status})
}

func (r *OkIDResult) MarshalJSON() ([]byte, error) {
	field := r.IDField
	if field == "" {
		field = "id"
	}
	return json.Marshal(map[string]any{"ok": true, "status": r.Status, field: r.ID})
}

func (r *OkDocsResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		statusFields
		Docs []Doc `json:"docs"`
	}{statusFields{true, r.Status}, nonNil(r.Docs)})
}

func (r *NotOkResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		statusFields
		Msg string `json:"msg,omitempty"`
	}{statusFields{false, r.Status}, r.Msg})
}

func (r *NotOkDocsResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		statusFields
		Msg  string `json:"msg,omitempty"`
		Docs []Doc  `json:"docs"`
	}{statusFields{false, r.Status}, r.Msg, nonNil(r.Docs)})
}

func (r *SearchQueryOKResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		statusFields
		Matches []Doc `json:"matches"`
	}{statusFields{true, r.Status}, nonNil(r.Matches)})
}

func (r *SearchLoadOKResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		statusFields
		Results []Doc `json:"results"`
	}{statusFields{true, r.Status}, nonNil(r.Results)})
}

func (r *BulkResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		statusFields
		Results []Doc `json:"results"`
	}{statusFields{true, r.Status}, nonNil(r.Results)})
}

// MarshalJSON emits the document fields with ok and status merged in.
func (r *DocResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Doc)+2)
	maps.Copy(out, r.Doc)
	out["ok"] = true
	out["status"] = r.Status
	return json.Marshal(out)
}

func (r *QueueJobsResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		statusFields
		Jobs []Doc `json:"jobs"`
	}{statusFields{true, r.Status}, nonNil(r.Jobs)})
}

func (r *InfoResult) MarshalJSON() ([]byte, error) {
	services := r.Services
	if services == nil {
		services = []string{}
	}
	return json.Marshal(struct {
		statusFields
		Name     string   `json:"name"`
		Version  string   `json:"version"`
		Services []string `json:"services"`
	}{statusFields{true, r.Status}, r.Name, r.Version, services})
}

func nonNil(docs []Doc) []Doc {
	if docs == nil {
		return []Doc{}
	}
	return docs
}
