package mcpsrv

import (
	"context"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/hyper-mcp/internal/config"
	"github.com/usestring/hyper-mcp/internal/hypertest"
	"github.com/usestring/hyper-mcp/pkg/hyper"
)

type existsInput struct {
	Key string `json:"key"`
}

type existsOutput struct {
	Found bool `json:"found"`
}

func TestNewServer_RequiresClient(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestNewServer_CustomDepsTool(t *testing.T) {
	backend := hypertest.NewServer(t)
	client, err := hyper.New(backend.ConnectionString("test"))
	require.NoError(t, err)

	cfg := config.Load()
	cfg.LogLevel = "error"
	srv, err := NewServer(client,
		WithConfig(cfg),
		WithVersion("v1.2.3"),
		WithoutBuiltinTools(),
		WithoutBuiltinPrompts(),
		WithDepsTool(&sdkmcp.Tool{Name: "cache_exists", Description: "Report whether a cache key is set"},
			func(d *Deps) func(context.Context, *sdkmcp.CallToolRequest, existsInput) (*sdkmcp.CallToolResult, existsOutput, error) {
				return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in existsInput) (*sdkmcp.CallToolResult, existsOutput, error) {
					res, err := d.Client.Cache().Get(ctx, in.Key)
					if err != nil {
						return nil, existsOutput{}, err
					}
					return nil, existsOutput{Found: res.IsOK()}, nil
				}
			}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	assert.Same(t, client, srv.Deps().Client)
	assert.NotNil(t, srv.Deps().Results)

	_, err = client.Cache().Add(context.Background(), "greeting", map[string]any{"text": "hi"}, "")
	require.NoError(t, err)

	ctx := context.Background()
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })
	cs, err := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "v0"}, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	assert.Equal(t, "v1.2.3", cs.InitializeResult().ServerInfo.Version)

	listed, err := cs.ListTools(ctx, &sdkmcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, listed.Tools, 1)
	assert.Equal(t, "cache_exists", listed.Tools[0].Name)

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "cache_exists", Arguments: map[string]any{"key": "greeting"}})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, map[string]any{"found": true}, res.StructuredContent)
}

type countInput struct {
	ID    string `json:"result_set_id"`
	Field string `json:"field"`
}

func (in countInput) ResultSet() string { return in.ID }

type countOutput struct {
	Count int `json:"count"`
}

func TestNewServer_ResultSetTool(t *testing.T) {
	backend := hypertest.NewServer(t)
	client, err := hyper.New(backend.ConnectionString("test"))
	require.NoError(t, err)

	srv, err := NewServer(client,
		WithoutBuiltinTools(),
		WithoutBuiltinPrompts(),
		WithResultSetTool(&sdkmcp.Tool{Name: "count_field", Description: "Count documents carrying a field"},
			func(_ context.Context, docs []map[string]any, in countInput) (countOutput, error) {
				n := 0
				for _, doc := range docs {
					if _, ok := doc[in.Field]; ok {
						n++
					}
				}
				return countOutput{Count: n}, nil
			}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	rs := srv.Deps().Results.Put("data", "list", []hyper.Doc{
		{"_id": "movie-1", "year": 1984.0},
		{"_id": "movie-2"},
	})

	ctx := context.Background()
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })
	cs, err := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "v0"}, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "count_field", Arguments: map[string]any{"result_set_id": rs.ID, "field": "year"}})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, map[string]any{"count": float64(1)}, res.StructuredContent)

	missing, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "count_field", Arguments: map[string]any{"result_set_id": "nope", "field": "year"}})
	require.NoError(t, err)
	assert.True(t, missing.IsError)
}
