package jsoncompact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompact_TrimsArrays(t *testing.T) {
	out, err := Compact([]byte(`{"cast":["a","b","c","d","e"]}`), &Options{MaxArrayItems: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cast":["a","b","... (3 more items)"]}`, string(out))
}

func TestCompact_EmptyAndInvalid(t *testing.T) {
	out, err := Compact(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = Compact([]byte(`{"a":`), nil)
	assert.Error(t, err)
}

func TestCompactValue_Strings(t *testing.T) {
	got := CompactValue(strings.Repeat("x", 12), &Options{MaxStringLen: 5})
	assert.Equal(t, "xxxxx... (7 more chars)", got)

	// "é" is two bytes; the cut moves back to the rune start.
	got = CompactValue("aé", &Options{MaxStringLen: 2})
	assert.Equal(t, "a... (2 more chars)", got)

	assert.Equal(t, "short", CompactValue("short", &Options{MaxStringLen: 10}))
}

func TestCompactValue_MaxDepth(t *testing.T) {
	doc := map[string]any{
		"title": "Dune",
		"meta":  map[string]any{"inner": map[string]any{"deep": true}},
	}
	got := CompactValue(doc, &Options{MaxDepth: 2}).(map[string]any)
	assert.Equal(t, "Dune", got["title"])
	assert.Equal(t, map[string]any{"inner": "[max depth]"}, got["meta"])
}

func TestCompactValue_DoesNotModifyInput(t *testing.T) {
	doc := map[string]any{"cast": []any{"a", "b", "c", "d"}}
	CompactValue(doc, &Options{MaxArrayItems: 1})
	assert.Len(t, doc["cast"], 4)
}

func TestCompactValue_DefaultOptions(t *testing.T) {
	arr := []any{1.0, 2.0, 3.0, 4.0}
	got := CompactValue(arr, nil)
	assert.Equal(t, []any{1.0, 2.0, 3.0, "... (1 more items)"}, got)
}

func TestPreviewDocs(t *testing.T) {
	docs := []map[string]any{{"_id": "a"}, {"_id": "b"}, {"_id": "c"}}

	p := PreviewDocs(docs, 2, nil)
	assert.Len(t, p.Docs, 2)
	assert.Equal(t, 1, p.Omitted)

	p = PreviewDocs(docs, 0, nil)
	assert.Len(t, p.Docs, 3)
	assert.Zero(t, p.Omitted)

	p = PreviewDocs(nil, 5, nil)
	assert.NotNil(t, p.Docs)
	assert.Empty(t, p.Docs)
}
