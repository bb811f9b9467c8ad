package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movies() []map[string]any {
	return []map[string]any{
		{"_id": "movie-1", "type": "movie", "title": "Ghostbusters", "cast": []any{"Murray", "Aykroyd"}},
		{"_id": "movie-2", "type": "movie", "title": "Dune", "cast": []any{"Chalamet"}},
		{"_id": "book-1", "type": "book", "title": "Dune"},
	}
}

func TestEngine_Query_Simple(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Query([]byte(`{"name": "John", "age": 30}`), ".name", false, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"John"}, result.Values)
	assert.Equal(t, 1, result.RawCount)
}

func TestEngine_Query_InvalidJSON(t *testing.T) {
	_, err := NewEngine().Query([]byte(`{"name"`), ".name", false, 0)
	assert.Error(t, err)
}

func TestEngine_QueryDocs_Select(t *testing.T) {
	engine := NewEngine()

	result, err := engine.QueryDocs(movies(), nil, `select(.type == "movie") | .title`, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"Ghostbusters", "Dune"}, result.Values)
	assert.Equal(t, []int{0, 1}, result.MatchedIndices)
	assert.True(t, result.Matched.Contains(1))
	assert.False(t, result.Matched.Contains(2))
}

func TestEngine_QueryDocs_Deduplicate(t *testing.T) {
	engine := NewEngine()

	result, err := engine.QueryDocs(movies(), nil, ".title", true, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"Ghostbusters", "Dune"}, result.Values)
	assert.Equal(t, 3, result.RawCount)
	assert.Equal(t, []int{0, 1, 2}, result.MatchedIndices)
}

func TestEngine_QueryDocs_MaxResults(t *testing.T) {
	engine := NewEngine()

	result, err := engine.QueryDocs(movies(), nil, ".cast[]?", false, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{"Murray", "Aykroyd"}, result.Values)
	assert.Equal(t, []int{0}, result.MatchedIndices)
}

func TestEngine_QueryDocs_LabelsAndErrors(t *testing.T) {
	engine := NewEngine()
	labels := []string{"movie-1", "movie-2", "book-1"}

	result, err := engine.QueryDocs(movies(), labels, ".cast[]", false, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.LabelCounts["movie-1"])
	assert.Equal(t, 1, result.LabelCounts["movie-2"])
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "book-1:")
	assert.Contains(t, result.Errors[0], "path may not exist")
}

func TestEngine_QueryDocs_Halt(t *testing.T) {
	result, err := NewEngine().QueryDocs(movies()[:1], nil, `"stop" | halt_error`, false, 0)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "query halted with: stop")
}

func TestEngine_QueryDocs_InvalidExpression(t *testing.T) {
	_, err := NewEngine().QueryDocs(movies(), nil, ".title[", false, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")
}

func TestEngine_ValidateExpression(t *testing.T) {
	engine := NewEngine()
	assert.NoError(t, engine.ValidateExpression(".docs[] | .title"))
	assert.Error(t, engine.ValidateExpression(".title["))
	assert.Error(t, engine.ValidateExpression("undefined_fn(1)"))
}

func TestValueKey(t *testing.T) {
	assert.Equal(t, "s:a", valueKey("a"))
	assert.Equal(t, "n:1", valueKey(float64(1)))
	assert.Equal(t, "b:true", valueKey(true))
	assert.Equal(t, `j:{"a":1}`, valueKey(map[string]any{"a": 1}))
}
