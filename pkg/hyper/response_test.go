package hyper

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, contentType, body string) *http.Response {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNormalize_JSONStampsStatus(t *testing.T) {
	env, err := Normalize(response(201, "application/json", `{"ok":true,"id":"movie-1","status":200}`))
	require.NoError(t, err)

	assert.True(t, env.OK)
	assert.Equal(t, 201, env.Status)
	assert.Equal(t, 201, env.Fields["status"])
	assert.Equal(t, "movie-1", env.Fields["id"])
}

func TestNormalize_PlainText(t *testing.T) {
	env, err := Normalize(response(404, "text/plain", "not found"))
	require.NoError(t, err)

	assert.False(t, env.OK)
	assert.Equal(t, "not found", env.Msg)
	assert.Equal(t, map[string]any{"ok": false, "msg": "not found", "status": 404}, env.Fields)
}

func TestNormalize_EmptyTextKeepsEmptyMsg(t *testing.T) {
	env, err := Normalize(response(404, "text/plain", ""))
	require.NoError(t, err)

	assert.Equal(t, &NotOkResult{Status: 404, Msg: ""}, env.Result())
	assert.EqualError(t, &NotOkError{Result: env.notOK()}, "hyper: not ok (status 404)")
}

func TestNormalize_JSONVariantsAreText(t *testing.T) {
	for _, ct := range []string{"application/x-ndjson", "text/json"} {
		t.Run(ct, func(t *testing.T) {
			env, err := Normalize(response(404, ct, "not found"))
			require.NoError(t, err)

			assert.False(t, env.OK)
			assert.Equal(t, "not found", env.Msg)
			assert.Equal(t, &NotOkResult{Status: 404, Msg: "not found"}, env.Result())
		})
	}
}

func TestNormalize_OKDerivation(t *testing.T) {
	env, err := Normalize(response(200, "application/json", `{"ok":false,"msg":"nope"}`))
	require.NoError(t, err)
	assert.False(t, env.OK, "explicit ok wins over the status")
	assert.Equal(t, "nope", env.Msg)

	env, err = Normalize(response(409, "application/json", `{"message":"conflict"}`))
	require.NoError(t, err)
	assert.False(t, env.OK)
	assert.Equal(t, "conflict", env.Msg)

	env, err = Normalize(response(200, "application/json", ""))
	require.NoError(t, err)
	assert.True(t, env.OK)
}

func TestNormalize_Fatal(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantMsg     string
	}{
		{"text", "text/plain", "upstream down", "upstream down"},
		{"json", "application/json", `{"ok":false,"msg":"boom"}`, "boom"},
		{"broken json", "application/json", "<html>bad gateway</html>", "<html>bad gateway</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(response(503, tt.contentType, tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFatal)

			var fe *FatalError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, 503, fe.Status)
			assert.Equal(t, tt.wantMsg, fe.Msg)
		})
	}
}

func TestNormalize_DecodeErrors(t *testing.T) {
	_, err := Normalize(response(200, "application/json", `[1,2]`))
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Normalize(response(200, "application/json", `{"ok":`))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestEnvelope_Conversions(t *testing.T) {
	ok := &Envelope{OK: true, Status: 200, Fields: map[string]any{
		"ok":      true,
		"status":  200,
		"_id":     "movie-1",
		"title":   "Ghostbusters",
		"docs":    []any{map[string]any{"_id": "a"}},
		"doc":     map[string]any{"title": "Dune"},
		"matches": []any{},
		"jobs":    []any{map[string]any{"id": "job-1"}},
	}}

	assert.Equal(t, &OkResult{Status: 200}, ok.Result())
	assert.Equal(t, &OkIDResult{Status: 200, ID: "movie-1", IDField: "id"}, ok.IDResult("id"))

	docs, err := ok.DocsResult()
	require.NoError(t, err)
	assert.Equal(t, &OkDocsResult{Status: 200, Docs: []Doc{{"_id": "a"}}}, docs)

	doc, err := ok.DocResult("")
	require.NoError(t, err)
	assert.Equal(t, "Ghostbusters", doc.(*DocResult).Doc["title"])
	assert.NotContains(t, doc.(*DocResult).Doc, "ok")
	assert.NotContains(t, doc.(*DocResult).Doc, "status")

	doc, err = ok.DocResult("doc")
	require.NoError(t, err)
	assert.Equal(t, Doc{"title": "Dune"}, doc.(*DocResult).Doc)

	matches, err := ok.SearchQueryResult()
	require.NoError(t, err)
	assert.Equal(t, []Doc{}, matches.(*SearchQueryOKResult).Matches)

	jobs, err := ok.JobsResult()
	require.NoError(t, err)
	assert.Len(t, jobs.(*QueueJobsResult).Jobs, 1)
}

func TestEnvelope_NotOK(t *testing.T) {
	env := &Envelope{OK: false, Status: 404, Fields: map[string]any{"ok": false, "status": 404}}

	assert.Equal(t, &NotOkResult{Status: 404}, env.Result())
	assert.Equal(t, &NotOkResult{Status: 404}, env.IDResult("id"))

	docs, err := env.DocsResult()
	require.NoError(t, err)
	nd, isNotOK := docs.(*NotOkDocsResult)
	require.True(t, isNotOK)
	assert.NotNil(t, nd.Docs)
	assert.Empty(t, nd.Docs)
	assert.False(t, nd.IsOK())
}

func TestEnvelope_DocsShapeErrors(t *testing.T) {
	env := &Envelope{OK: true, Status: 200, Fields: map[string]any{"docs": "nope"}}
	_, err := env.DocsResult()
	assert.ErrorIs(t, err, ErrDecode)

	env = &Envelope{OK: true, Status: 200, Fields: map[string]any{"docs": []any{1}}}
	_, err = env.DocsResult()
	assert.ErrorIs(t, err, ErrDecode)
}

func TestResult_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   Result
		want string
	}{
		{"ok", &OkResult{Status: 200}, `{"ok":true,"status":200}`},
		{"id", &OkIDResult{Status: 201, ID: "movie-1"}, `{"ok":true,"status":201,"id":"movie-1"}`},
		{"underscore id", &OkIDResult{Status: 201, ID: "movie-1", IDField: "_id"}, `{"ok":true,"status":201,"_id":"movie-1"}`},
		{"not ok", &NotOkResult{Status: 404, Msg: "not found"}, `{"ok":false,"status":404,"msg":"not found"}`},
		{"not ok docs", &NotOkDocsResult{Status: 422}, `{"ok":false,"status":422,"docs":[]}`},
		{"docs nil", &OkDocsResult{Status: 200}, `{"ok":true,"status":200,"docs":[]}`},
		{"doc", &DocResult{Status: 200, Doc: Doc{"title": "Dune"}}, `{"ok":true,"status":200,"title":"Dune"}`},
		{"info", &InfoResult{Status: 200, Name: "hyper"}, `{"ok":true,"status":200,"name":"hyper","version":"","services":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestDoc_ID(t *testing.T) {
	assert.Equal(t, "a", Doc{"id": "a"}.ID("id"))
	assert.Equal(t, "b", Doc{"_id": "b"}.ID("id"))
	assert.Equal(t, "c", Doc{"id": "c"}.ID("_id"))
	assert.Equal(t, "", Doc{}.ID("id"))
}
