package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/hyper-mcp/internal/hypertest"
)

const catalogHTML = `<html><head><title>Catalog</title></head><body>
<ul id="list"><li class="movie">Dune</li><li class="movie">Alien</li></ul>
</body></html>`

func TestStorageQuery(t *testing.T) {
	srv := hypertest.NewServer(t)
	d := newTestDeps(t, srv)
	ctx := context.Background()

	srv.PutObject("test", "catalog.html", "text/html", []byte(catalogHTML))
	srv.PutObject("test", "movies.csv", "text/csv", []byte("title,year\nDune,2021\nAlien,1979\n"))

	_, css, err := ToolStorageQuery(d)(ctx, nil, StorageQueryInput{Name: "catalog.html", Expression: "li.movie"})
	require.NoError(t, err)
	assert.Equal(t, "css", css.Mode)
	assert.Equal(t, "html", css.Format)
	assert.Equal(t, []any{"Dune", "Alien"}, css.Values)
	assert.False(t, css.Partial)

	_, xp, err := ToolStorageQuery(d)(ctx, nil, StorageQueryInput{Name: "catalog.html", Expression: "//li", Mode: "xpath", MaxResults: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, xp.Count)
	assert.True(t, xp.Truncated)

	_, jq, err := ToolStorageQuery(d)(ctx, nil, StorageQueryInput{Name: "movies.csv", Expression: "[.[].title]"})
	require.NoError(t, err)
	assert.Equal(t, "jq", jq.Mode)
	assert.Equal(t, []any{[]any{"Dune", "Alien"}}, jq.Values)
}

func TestStorageQuery_Errors(t *testing.T) {
	srv := hypertest.NewServer(t)
	d := newTestDeps(t, srv)
	ctx := context.Background()

	srv.PutObject("test", "logo.png", "image/png", []byte{0x89, 'P', 'N', 'G'})

	_, _, err := ToolStorageQuery(d)(ctx, nil, StorageQueryInput{Expression: "a"})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))

	_, _, err = ToolStorageQuery(d)(ctx, nil, StorageQueryInput{Name: "x.html", Expression: "//[", Mode: "xpath"})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))
	assert.Empty(t, srv.Requests(), "invalid expressions are rejected before downloading")

	_, _, err = ToolStorageQuery(d)(ctx, nil, StorageQueryInput{Name: "logo.png", Expression: "x"})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))

	_, _, err = ToolStorageQuery(d)(ctx, nil, StorageQueryInput{Name: "missing.html", Expression: "a"})
	assert.Equal(t, ErrCodeNotFound, codeOf(err))
}

func TestStorageInspect(t *testing.T) {
	srv := hypertest.NewServer(t)
	d := newTestDeps(t, srv)
	ctx := context.Background()

	srv.PutObject("test", "movies.json", "application/json", []byte(`[{"title":"Dune"},{"title":"Alien"}]`))
	srv.PutObject("test", "catalog.html", "text/html", []byte(catalogHTML))

	_, js, err := ToolStorageInspect(d)(ctx, nil, StorageNameInput{Name: "movies.json"})
	require.NoError(t, err)
	outline, ok := js.Outline.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json", outline["format"])
	assert.Equal(t, float64(2), outline["doc_count"])
	assert.NotNil(t, outline["schema"])

	_, html, err := ToolStorageInspect(d)(ctx, nil, StorageNameInput{Name: "catalog.html"})
	require.NoError(t, err)
	outline = html.Outline.(map[string]any)
	page, ok := outline["html"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Catalog", page["title"])
	assert.Equal(t, []any{"list"}, page["ids"])

	_, _, err = ToolStorageInspect(d)(ctx, nil, StorageNameInput{})
	assert.Equal(t, ErrCodeInvalidInput, codeOf(err))
}
