package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/hyper-mcp/internal/cache"
	"github.com/usestring/hyper-mcp/internal/config"
	"github.com/usestring/hyper-mcp/internal/hypertest"
	"github.com/usestring/hyper-mcp/internal/mcp/tools"
	"github.com/usestring/hyper-mcp/internal/query"
	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/textquery"
)

func connect(t *testing.T, opts ...ServerOption) (*sdkmcp.ClientSession, *hypertest.Server) {
	t.Helper()
	backend := hypertest.NewServer(t)
	client, err := hyper.New(backend.ConnectionString("test"), hyper.WithIDField("_id"))
	require.NoError(t, err)
	results, err := cache.NewResultStore(8)
	require.NoError(t, err)

	srv, err := NewServer(&tools.Deps{
		Client:    client,
		Results:   results,
		Flight:    &cache.Flight{},
		Query:     query.NewEngine(),
		TextQuery: textquery.NewEngine(nil),
		Config:    config.Load(),
	}, opts...)
	require.NoError(t, err)

	ctx := context.Background()
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	mcpClient := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := mcpClient.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs, backend
}

func TestServer_ListsBuiltinTools(t *testing.T) {
	cs, _ := connect(t, WithBuiltinTools(), WithBuiltinPrompts())
	ctx := context.Background()

	res, err := cs.ListTools(ctx, &sdkmcp.ListToolsParams{})
	require.NoError(t, err)
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.Len(t, names, 26)
	assert.Contains(t, names, "hyper_data_query")
	assert.Contains(t, names, "hyper_jq")

	prompts, err := cs.ListPrompts(ctx, &sdkmcp.ListPromptsParams{})
	require.NoError(t, err)
	require.Len(t, prompts.Prompts, 1)
	assert.Equal(t, "hyper_guide", prompts.Prompts[0].Name)
}

func TestServer_Instructions(t *testing.T) {
	cs, _ := connect(t, WithBuiltinTools(), WithBuiltinPrompts())

	instructions := cs.InitializeResult().Instructions
	assert.Contains(t, instructions, `data domain "test"`)
	assert.Contains(t, instructions, "hyper_info_services")
	assert.Contains(t, instructions, "hyper_guide")

	bare, _ := connect(t)
	assert.NotContains(t, bare.InitializeResult().Instructions, "hyper_info_services")
}

func TestToolErrorCode(t *testing.T) {
	coded := &sdkmcp.CallToolResult{IsError: true, Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: "HYPER_FATAL: data get failed: status 503"}}}
	assert.Equal(t, "HYPER_FATAL", toolErrorCode(coded))

	plain := &sdkmcp.CallToolResult{IsError: true, Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: "reading body: unexpected EOF"}}}
	assert.Empty(t, toolErrorCode(plain))

	assert.Empty(t, toolErrorCode(&sdkmcp.CallToolResult{IsError: true}))
}

func TestServer_WithoutBuiltins(t *testing.T) {
	cs, _ := connect(t)

	res, err := cs.ListTools(context.Background(), &sdkmcp.ListToolsParams{})
	require.NoError(t, err)
	assert.Empty(t, res.Tools)
}

func TestServer_CallToolAndReadResources(t *testing.T) {
	cs, _ := connect(t, WithBuiltinTools())
	ctx := context.Background()

	added, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "hyper_data_add",
		Arguments: map[string]any{"doc": map[string]any{"_id": "movie-1", "title": "Alien"}},
	})
	require.NoError(t, err)
	require.False(t, added.IsError)

	listed, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "hyper_data_list",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.False(t, listed.IsError)

	raw, err := json.Marshal(listed.StructuredContent)
	require.NoError(t, err)
	var out struct {
		ResultSetID string `json:"result_set_id"`
		Count       int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 1, out.Count)
	require.NotEmpty(t, out.ResultSetID)

	doc, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "hyper://data/movie-1"})
	require.NoError(t, err)
	require.Len(t, doc.Contents, 1)
	assert.Contains(t, doc.Contents[0].Text, `"Alien"`)

	set, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "hyper://results/" + out.ResultSetID})
	require.NoError(t, err)
	assert.Contains(t, set.Contents[0].Text, `"operation": "list"`)

	_, err = cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "hyper://results/rs_missing"})
	assert.Error(t, err)
}

func TestServer_ToolErrorsAreResults(t *testing.T) {
	cs, backend := connect(t, WithBuiltinTools())
	backend.FailNext(503, "down")

	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "hyper_data_get",
		Arguments: map[string]any{"id": "movie-1"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestResourceParam(t *testing.T) {
	v, err := resourceParam("hyper://cache/movie%2F1", tools.CacheResourcePrefix)
	require.NoError(t, err)
	assert.Equal(t, "movie/1", v)

	_, err = resourceParam("http://cache/x", tools.CacheResourcePrefix)
	assert.Error(t, err)

	_, err = resourceParam("hyper://cache/", tools.CacheResourcePrefix)
	assert.Error(t, err)
}
