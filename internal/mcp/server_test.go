package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/lenish/personal-hub/internal/domain/item"
	"github.com/lenish/personal-hub/internal/domain/syncstate"
)

type stubItemService struct {
	items    []*item.Item
	lastOpts item.ListOptions
}

func (s *stubItemService) List(_ context.Context, opts item.ListOptions) ([]*item.Item, error) {
	s.lastOpts = opts
	return s.items, nil
}

type stubSyncService struct {
	states []syncstate.State
}

func (s *stubSyncService) List(_ context.Context) ([]syncstate.State, error) {
	return s.states, nil
}

func startSession(t *testing.T, cfg Config) *sdkmcp.ClientSession {
	t.Helper()

	server := NewServer(cfg)
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	go func() {
		_ = server.Run(ctx, serverTransport)
	}()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "0.0.1",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return session
}

func textResult(t *testing.T, result *sdkmcp.CallToolResult, out any) {
	t.Helper()
	require.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "content should be TextContent")
	require.NoError(t, json.Unmarshal([]byte(text.Text), out))
}

func TestToolsAreRegistered(t *testing.T) {
	session := startSession(t, Config{Items: &stubItemService{}, Syncs: &stubSyncService{}})

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	require.True(t, names["query_items"])
	require.True(t, names["sync_status"])
	require.True(t, names["run_collector"])
}

func TestQueryItemsTool(t *testing.T) {
	items := &stubItemService{items: []*item.Item{
		{ID: "1", Source: "whoop", SourceID: "rec-1", Category: "health", ItemType: "recovery"},
	}}
	session := startSession(t, Config{Items: items, Syncs: &stubSyncService{}})

	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "query_items",
		Arguments: map[string]any{"source": "whoop", "category": "health"},
	})
	require.NoError(t, err)

	var out queryItemsResult
	textResult(t, result, &out)
	require.Equal(t, 1, out.Count)
	require.Equal(t, "rec-1", out.Items[0].SourceID)

	require.Equal(t, "whoop", items.lastOpts.Source)
	require.Equal(t, "health", items.lastOpts.Category)
	require.Equal(t, 50, items.lastOpts.Limit, "limit defaults when omitted")
}

func TestSyncStatusTool(t *testing.T) {
	syncs := &stubSyncService{states: []syncstate.State{
		{Source: "whoop", Status: syncstate.StatusError, ErrorMessage: "upstream returned 502"},
	}}
	session := startSession(t, Config{Items: &stubItemService{}, Syncs: syncs})

	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "sync_status",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)

	var out syncStatusResult
	textResult(t, result, &out)
	require.Len(t, out.Sources, 1)
	require.Equal(t, "upstream returned 502", out.Sources[0].ErrorMessage)
	require.NotNil(t, out.Sources[0].Cursor, "a source that never paged still reports an empty cursor object")
}

func TestRunCollectorTool(t *testing.T) {
	var triggered string
	trigger := func(source string) bool {
		triggered = source
		return source == "whoop"
	}
	session := startSession(t, Config{
		Items:   &stubItemService{},
		Syncs:   &stubSyncService{},
		Trigger: trigger,
	})

	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "run_collector",
		Arguments: map[string]any{"source": "whoop"},
	})
	require.NoError(t, err)

	var out runCollectorResult
	textResult(t, result, &out)
	require.True(t, out.Triggered)
	require.Equal(t, "whoop", triggered)

	result, err = session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "run_collector",
		Arguments: map[string]any{"source": "nope"},
	})
	require.NoError(t, err)

	textResult(t, result, &out)
	require.False(t, out.Triggered)
}
