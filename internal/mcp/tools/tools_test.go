package tools

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/hyper-mcp/internal/cache"
	"github.com/usestring/hyper-mcp/internal/config"
	"github.com/usestring/hyper-mcp/internal/hypertest"
	"github.com/usestring/hyper-mcp/internal/query"
	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/textquery"
)

func newTestDeps(t *testing.T, srv *hypertest.Server) *Deps {
	t.Helper()
	client, err := hyper.New(srv.ConnectionString("test"), hyper.WithIDField("_id"))
	require.NoError(t, err)
	results, err := cache.NewResultStore(16)
	require.NoError(t, err)
	return &Deps{
		Client:    client,
		Results:   results,
		Flight:    &cache.Flight{},
		Query:     query.NewEngine(),
		TextQuery: textquery.NewEngine(nil),
		Config:    config.Load(),
	}
}

func seedMovies(t *testing.T, d *Deps) {
	t.Helper()
	movies := []map[string]any{
		{"_id": "movie-1", "type": "movie", "title": "Ghostbusters", "year": 1984.0},
		{"_id": "movie-2", "type": "movie", "title": "Dune", "year": 2021.0},
		{"_id": "movie-3", "type": "movie", "title": "Alien", "year": 1979.0},
	}
	for _, m := range movies {
		_, out, err := ToolDataAdd(d)(context.Background(), nil, DataAddInput{Doc: m})
		require.NoError(t, err)
		require.True(t, out.OK)
	}
}

func codeOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

func TestDataTools_Lifecycle(t *testing.T) {
	d := newTestDeps(t, hypertest.NewServer(t))
	ctx := context.Background()

	_, added, err := ToolDataAdd(d)(ctx, nil, DataAddInput{Doc: map[string]any{"_id": "movie-1", "title": "Ghostbusters"}})
	require.NoError(t, err)
	assert.True(t, added.OK)
	assert.Equal(t, http.StatusCreated, added.Status)
	assert.Equal(t, "movie-1", added.ID)

	_, got, err := ToolDataGet(d)(ctx, nil, DataIDInput{ID: "movie-1"})
	require.NoError(t, err)
	assert.True(t, got.OK)
	assert.Equal(t, "Ghostbusters", got.Doc.(map[string]any)["title"])
	require.NotNil(t, got.Resource)
	assert.Equal(t, "hyper://data/movie-1", got.Resource.URI)

	_, updated, err := ToolDataUpdate(d)(ctx, nil, DataUpdateInput{ID: "movie-1", Doc: map[string]any{"_id": "movie-1", "title": "Ghostbusters II"}})
	require.NoError(t, err)
	assert.True(t, updated.OK)

	_, removed, err := ToolDataRemove(d)(ctx, nil, DataIDInput{ID: "movie-1"})
	require.NoError(t, err)
	assert.True(t, removed.OK)

	_, missing, err := ToolDataGet(d)(ctx, nil, DataIDInput{ID: "movie-1"})
	require.NoError(t, err, "not-ok is a result, not an error")
	assert.False(t, missing.OK)
	assert.Equal(t, http.StatusNotFound, missing.Status)
	assert.Equal(t, "not found", missing.Msg)
	assert.Nil(t, missing.Resource)
}

func TestDataTools_InvalidInput(t *testing.T) {
	d := newTestDeps(t, hypertest.NewServer(t))
	ctx := context.Background()

	_, _, err := ToolDataGet(d)(ctx, nil, DataIDInput{})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))

	_, _, err = ToolDataAdd(d)(ctx, nil, DataAddInput{})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))

	_, _, err = ToolDataList(d)(ctx, nil, DataListInput{Limit: -1})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))

	_, _, err = ToolDataQuery(d)(ctx, nil, DataQueryInput{Selector: map[string]any{}, Sort: []SortInput{{}}})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))
}

func TestDataList_StoresResultSet(t *testing.T) {
	d := newTestDeps(t, hypertest.NewServer(t))
	d.Config.DefaultPreviewItems = 2
	seedMovies(t, d)

	_, out, err := ToolDataList(d)(context.Background(), nil, DataListInput{})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, 3, out.Count)
	assert.Len(t, out.Preview, 2)
	assert.Equal(t, 1, out.Omitted)
	require.NotNil(t, out.Resource)
	assert.Equal(t, "hyper://results/"+out.ResultSetID, out.Resource.URI)

	rs, ok := d.Results.Get(out.ResultSetID)
	require.True(t, ok)
	assert.Len(t, rs.Docs, 3)
	assert.Equal(t, "data", rs.Service)
}

func TestDataQuery_UnknownIndexIsNotOK(t *testing.T) {
	d := newTestDeps(t, hypertest.NewServer(t))
	seedMovies(t, d)

	_, out, err := ToolDataQuery(d)(context.Background(), nil, DataQueryInput{
		Selector: map[string]any{"type": "movie"},
		UseIndex: "missing",
	})
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.Equal(t, http.StatusBadRequest, out.Status)
	assert.Empty(t, out.ResultSetID)
}

func TestDataQuery_SortAndIndex(t *testing.T) {
	d := newTestDeps(t, hypertest.NewServer(t))
	seedMovies(t, d)
	ctx := context.Background()

	_, idx, err := ToolDataIndex(d)(ctx, nil, DataIndexInput{Name: "by-year", Fields: []string{"year"}})
	require.NoError(t, err)
	assert.True(t, idx.OK)

	_, out, err := ToolDataQuery(d)(ctx, nil, DataQueryInput{
		Selector: map[string]any{"type": "movie"},
		Sort:     []SortInput{{Field: "year", Desc: true}},
		UseIndex: "by-year",
	})
	require.NoError(t, err)
	require.True(t, out.OK)
	assert.Equal(t, 3, out.Count)

	rs, _ := d.Results.Get(out.ResultSetID)
	assert.Equal(t, []string{"movie-2", "movie-1", "movie-3"}, rs.IDs("_id"))
}

func TestDataBulk(t *testing.T) {
	d := newTestDeps(t, hypertest.NewServer(t))

	_, out, err := ToolDataBulk(d)(context.Background(), nil, DataBulkInput{Docs: []map[string]any{
		{"_id": "book-1", "title": "Dune"},
		{"_id": "book-2", "title": "Emma"},
	}})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Len(t, out.Results, 2)
}

func TestCacheTools(t *testing.T) {
	d := newTestDeps(t, hypertest.NewServer(t))
	ctx := context.Background()

	_, set, err := ToolCacheSet(d)(ctx, nil, CacheSetInput{Key: "movie-1", Value: map[string]any{"title": "Dune"}, TTL: "5m"})
	require.NoError(t, err)
	assert.True(t, set.OK)

	_, got, err := ToolCacheGet(d)(ctx, nil, CacheKeyInput{Key: "movie-1"})
	require.NoError(t, err)
	assert.True(t, got.OK)
	assert.Equal(t, "Dune", got.Doc.(map[string]any)["title"])
	assert.Equal(t, "hyper://cache/movie-1", got.Resource.URI)

	_, q, err := ToolCacheQuery(d)(ctx, nil, CacheQueryInput{Pattern: "movie-*"})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Count)

	_, removed, err := ToolCacheRemove(d)(ctx, nil, CacheKeyInput{Key: "movie-1"})
	require.NoError(t, err)
	assert.True(t, removed.OK)

	_, gone, err := ToolCacheGet(d)(ctx, nil, CacheKeyInput{Key: "movie-1"})
	require.NoError(t, err)
	assert.False(t, gone.OK)
	assert.Equal(t, http.StatusNotFound, gone.Status)
}

func TestSearchTools(t *testing.T) {
	d := newTestDeps(t, hypertest.NewServer(t))
	ctx := context.Background()

	_, added, err := ToolSearchAdd(d)(ctx, nil, SearchAddInput{Key: "movie-1", Doc: map[string]any{"title": "Ghostbusters", "type": "movie"}})
	require.NoError(t, err)
	assert.True(t, added.OK)

	_, loaded, err := ToolSearchLoad(d)(ctx, nil, SearchLoadInput{Docs: []map[string]any{
		{"key": "movie-2", "title": "Dune", "type": "movie"},
		{"key": "book-1", "title": "Dune Messiah", "type": "book"},
	}})
	require.NoError(t, err)
	assert.Len(t, loaded.Results, 2)

	_, out, err := ToolSearchQuery(d)(ctx, nil, SearchQueryInput{Query: "dune", Filter: map[string]any{"type": "movie"}})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, 1, out.Count)

	_, removed, err := ToolSearchRemove(d)(ctx, nil, SearchKeyInput{Key: "movie-2"})
	require.NoError(t, err)
	assert.True(t, removed.OK)

	_, _, err = ToolSearchQuery(d)(ctx, nil, SearchQueryInput{})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))
}

func TestStorageDownload(t *testing.T) {
	srv := hypertest.NewServer(t)
	d := newTestDeps(t, srv)
	ctx := context.Background()

	srv.PutObject("test", "notes.json", "application/json", []byte(`{"title":"Dune"}`))
	srv.PutObject("test", "logo.png", "image/png", []byte{0x89, 'P', 'N', 'G'})

	_, text, err := ToolStorageDownload(d)(ctx, nil, StorageDownloadInput{Name: "notes.json"})
	require.NoError(t, err)
	assert.Equal(t, "text", text.Encoding)
	assert.Equal(t, `{"title":"Dune"}`, text.Content)
	assert.Equal(t, "json", text.Category)

	_, bin, err := ToolStorageDownload(d)(ctx, nil, StorageDownloadInput{Name: "logo.png"})
	require.NoError(t, err)
	assert.Equal(t, "base64", bin.Encoding)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}), bin.Content)

	_, capped, err := ToolStorageDownload(d)(ctx, nil, StorageDownloadInput{Name: "notes.json", MaxBytes: 4})
	require.NoError(t, err)
	assert.True(t, capped.Truncated)
	assert.Equal(t, `{"ti`, capped.Content)

	_, _, err = ToolStorageDownload(d)(ctx, nil, StorageDownloadInput{Name: "missing.txt"})
	assert.Equal(t, ErrCodeNotFound, codeOf(err))

	_, removed, err := ToolStorageRemove(d)(ctx, nil, StorageNameInput{Name: "logo.png"})
	require.NoError(t, err)
	assert.True(t, removed.OK)
}

func TestQueueTools(t *testing.T) {
	srv := hypertest.NewServer(t)
	d := newTestDeps(t, srv)
	ctx := context.Background()

	_, queued, err := ToolQueueEnqueue(d)(ctx, nil, QueueEnqueueInput{Job: map[string]any{"type": "email"}})
	require.NoError(t, err)
	assert.True(t, queued.OK)
	assert.NotEmpty(t, queued.ID)

	_, waiting, err := ToolQueueJobs(d)(ctx, nil, QueueJobsInput{Status: "queued"})
	require.NoError(t, err)
	assert.Equal(t, 1, waiting.Count)

	srv.SetJobStatus("test", hyper.JobStatusError)
	_, failed, err := ToolQueueJobs(d)(ctx, nil, QueueJobsInput{Status: "errors"})
	require.NoError(t, err)
	assert.Equal(t, 1, failed.Count)

	_, _, err = ToolQueueJobs(d)(ctx, nil, QueueJobsInput{Status: "done"})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))
}

func TestInfoServices(t *testing.T) {
	srv := hypertest.NewServer(t, hypertest.WithCredentials("app", "s3cret"))
	d := newTestDeps(t, srv)

	_, out, err := ToolInfoServices(d)(context.Background(), nil, InfoInput{})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, "hyper", out.Name)
	assert.Contains(t, out.Services, "data")
	assert.NotContains(t, out.Connection, "s3cret")
	assert.Equal(t, "test", out.Domain)
}

func TestFatalIsCodedError(t *testing.T) {
	srv := hypertest.NewServer(t)
	d := newTestDeps(t, srv)

	srv.FailNext(http.StatusInternalServerError, "database unavailable")
	_, _, err := ToolDataGet(d)(context.Background(), nil, DataIDInput{ID: "movie-1"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeHyperFatal, codeOf(err))
	assert.ErrorIs(t, err, hyper.ErrFatal)
}

func TestWrapHyperError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"fatal", &hyper.FatalError{Status: 503}, ErrCodeHyperFatal},
		{"not found", &hyper.NotOkError{Result: &hyper.NotOkResult{Status: 404, Msg: "not found"}}, ErrCodeNotFound},
		{"not ok", &hyper.NotOkError{Result: &hyper.NotOkResult{Status: 409}}, ErrCodeHyperError},
		{"invalid param", &hyper.InvalidParamError{Name: "keys", Reason: "unsupported"}, ErrCodeInvalidInput},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"other", errors.New("connection refused"), ErrCodeHyperError},
		{"already coded", ErrNotFound("result set", "rs_x"), ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codeOf(WrapHyperError(tt.err)))
		})
	}
	assert.NoError(t, WrapHyperError(nil))
}
