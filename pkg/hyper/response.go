package hyper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/usestring/hyper-mcp/pkg/contenttype"
)

// Envelope is a normalized response: the decoded JSON object (or a
// synthesized {ok, msg} for non-JSON bodies) with status stamped in.
type Envelope struct {
	OK     bool
	Status int
	Msg    string
	Fields map[string]any
}

// Normalize reads resp.Body to the end without closing it.
//
// JSON bodies (by Content-Type) are decoded into Fields; anything else
// becomes {ok: status < 400, msg: body}. The HTTP status always overwrites a
// status field sent by the backend. A status of 500 or above is returned as
// a *FatalError instead of an envelope.
func Normalize(resp *http.Response) (*Envelope, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	env := &Envelope{Status: resp.StatusCode}
	if contenttype.IsJSON(resp.Header.Get("Content-Type")) {
		fields, err := decodeObject(body)
		if err != nil {
			if resp.StatusCode >= 500 {
				return nil, &FatalError{Status: resp.StatusCode, Msg: strings.TrimSpace(string(body))}
			}
			return nil, err
		}
		env.Fields = fields
		if ok, isBool := fields["ok"].(bool); isBool {
			env.OK = ok
		} else {
			env.OK = resp.StatusCode < 400
		}
		env.Msg = messageOf(fields)
	} else {
		env.OK = resp.StatusCode < 400
		env.Msg = string(body)
		env.Fields = map[string]any{"ok": env.OK, "msg": env.Msg}
	}
	env.Fields["status"] = resp.StatusCode

	if resp.StatusCode >= 500 {
		return nil, &FatalError{Status: resp.StatusCode, Msg: env.Msg}
	}
	return env, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	fields := make(map[string]any)
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrDecode, v)
	}
	return obj, nil
}

func messageOf(fields map[string]any) string {
	for _, k := range []string{"msg", "message", "error"} {
		if s, ok := fields[k].(string); ok {
			return s
		}
	}
	return ""
}

func (e *Envelope) notOK() *NotOkResult {
	return &NotOkResult{Status: e.Status, Msg: e.Msg}
}

// Result converts the envelope to OkResult or NotOkResult.
func (e *Envelope) Result() Result {
	if !e.OK {
		return e.notOK()
	}
	return &OkResult{Status: e.Status}
}

// IDResult converts the envelope to OkIDResult, reading the id from field
// and falling back to the other of "id" and "_id".
func (e *Envelope) IDResult(field string) Result {
	if !e.OK {
		return e.notOK()
	}
	if field == "" {
		field = DefaultIDField
	}
	return &OkIDResult{Status: e.Status, ID: Doc(e.Fields).ID(field), IDField: field}
}

// DocsResult converts the envelope to OkDocsResult or NotOkDocsResult.
func (e *Envelope) DocsResult() (Result, error) {
	if !e.OK {
		n := e.notOK()
		return &NotOkDocsResult{Status: n.Status, Msg: n.Msg, Docs: []Doc{}}, nil
	}
	docs, err := e.docs("docs")
	if err != nil {
		return nil, err
	}
	return &OkDocsResult{Status: e.Status, Docs: docs}, nil
}

// DocResult converts the envelope to a DocResult. With an empty field the
// document is the body itself minus ok and status; otherwise it is the
// object found under field.
func (e *Envelope) DocResult(field string) (Result, error) {
	if !e.OK {
		return e.notOK(), nil
	}
	doc := make(Doc, len(e.Fields))
	if field == "" {
		for k, v := range e.Fields {
			if k != "ok" && k != "status" {
				doc[k] = v
			}
		}
		return &DocResult{Status: e.Status, Doc: doc}, nil
	}
	switch v := e.Fields[field].(type) {
	case map[string]any:
		doc = v
	case nil:
	default:
		doc = Doc{"value": v}
	}
	return &DocResult{Status: e.Status, Doc: doc}, nil
}

// SearchQueryResult converts the envelope to SearchQueryOKResult.
func (e *Envelope) SearchQueryResult() (Result, error) {
	if !e.OK {
		return e.notOK(), nil
	}
	matches, err := e.docs("matches")
	if err != nil {
		return nil, err
	}
	return &SearchQueryOKResult{Status: e.Status, Matches: matches}, nil
}

// SearchLoadResult converts the envelope to SearchLoadOKResult.
func (e *Envelope) SearchLoadResult() (Result, error) {
	if !e.OK {
		return e.notOK(), nil
	}
	results, err := e.docs("results")
	if err != nil {
		return nil, err
	}
	return &SearchLoadOKResult{Status: e.Status, Results: results}, nil
}

// BulkResult converts the envelope to BulkResult.
func (e *Envelope) BulkResult() (Result, error) {
	if !e.OK {
		return e.notOK(), nil
	}
	results, err := e.docs("results")
	if err != nil {
		return nil, err
	}
	return &BulkResult{Status: e.Status, Results: results}, nil
}

// JobsResult converts the envelope to QueueJobsResult.
func (e *Envelope) JobsResult() (Result, error) {
	if !e.OK {
		return e.notOK(), nil
	}
	jobs, err := e.docs("jobs")
	if err != nil {
		return nil, err
	}
	return &QueueJobsResult{Status: e.Status, Jobs: jobs}, nil
}

// InfoResult converts the envelope to InfoResult.
func (e *Envelope) InfoResult() Result {
	if !e.OK {
		return e.notOK()
	}
	r := &InfoResult{Status: e.Status, Services: []string{}}
	r.Name, _ = e.Fields["name"].(string)
	r.Version, _ = e.Fields["version"].(string)
	if list, ok := e.Fields["services"].([]any); ok {
		for _, s := range list {
			if name, ok := s.(string); ok {
				r.Services = append(r.Services, name)
			}
		}
	}
	return r
}

// docs reads a list of objects from field. A missing field is an empty list.
func (e *Envelope) docs(field string) ([]Doc, error) {
	raw, present := e.Fields[field]
	if !present || raw == nil {
		return []Doc{}, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, want a list", ErrDecode, field, raw)
	}
	docs := make([]Doc, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is %T, want an object", ErrDecode, field, i, item)
		}
		docs = append(docs, obj)
	}
	return docs, nil
}
