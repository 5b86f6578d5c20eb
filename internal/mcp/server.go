// Package mcp exposes the hub to MCP clients so an assistant can query
// stored items and sync outcomes, and kick off collection passes.
package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lenish/personal-hub/internal/domain/item"
	"github.com/lenish/personal-hub/internal/domain/syncstate"
)

// ItemService reads stored items.
type ItemService interface {
	List(ctx context.Context, opts item.ListOptions) ([]*item.Item, error)
}

// SyncService reads per-source sync state.
type SyncService interface {
	List(ctx context.Context) ([]syncstate.State, error)
}

// TriggerFunc starts an asynchronous collection pass for a source.
type TriggerFunc func(source string) bool

// Config contains server dependencies.
type Config struct {
	Items   ItemService
	Syncs   SyncService
	Trigger TriggerFunc
	Logger  *slog.Logger
}

type queryItemsParams struct {
	Source   string `json:"source,omitempty" jsonschema:"filter by source adapter"`
	Category string `json:"category,omitempty" jsonschema:"filter by category"`
	ItemType string `json:"item_type,omitempty" jsonschema:"filter by item type"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of items"`
	Offset   int    `json:"offset,omitempty" jsonschema:"pagination offset"`
}

type queryItemsResult struct {
	Items []*item.Item `json:"items"`
	Count int          `json:"count"`
}

type syncStatusParams struct{}

type syncStatusResult struct {
	Sources []syncstate.State `json:"sources"`
}

type runCollectorParams struct {
	Source string `json:"source" jsonschema:"source adapter to run"`
}

type runCollectorResult struct {
	Source    string `json:"source"`
	Triggered bool   `json:"triggered"`
}

// NewServer creates and configures an MCP server with the hub's tools.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "personal-hub",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Logger: cfg.Logger,
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "query_items",
		Description: "Query normalized personal data items, newest first, optionally filtered by source, category, and type",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params queryItemsParams) (*sdkmcp.CallToolResult, queryItemsResult, error) {
		limit := params.Limit
		if limit <= 0 {
			limit = 50
		}
		items, err := cfg.Items.List(ctx, item.ListOptions{
			Source:   params.Source,
			Category: params.Category,
			ItemType: params.ItemType,
			Limit:    limit,
			Offset:   params.Offset,
		})
		if err != nil {
			return nil, queryItemsResult{}, err
		}
		if items == nil {
			items = []*item.Item{}
		}
		return nil, queryItemsResult{Items: items, Count: len(items)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "sync_status",
		Description: "Report last run outcome, item counts, and errors for every data source",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ syncStatusParams) (*sdkmcp.CallToolResult, syncStatusResult, error) {
		states, err := cfg.Syncs.List(ctx)
		if err != nil {
			return nil, syncStatusResult{}, err
		}
		if states == nil {
			states = []syncstate.State{}
		}
		// The tool's output schema requires cursor to be an object, not null.
		for i := range states {
			if states[i].Cursor == nil {
				states[i].Cursor = item.Document{}
			}
		}
		return nil, syncStatusResult{Sources: states}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "run_collector",
		Description: "Trigger a collection pass for one source; outcome lands in sync status",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, params runCollectorParams) (*sdkmcp.CallToolResult, runCollectorResult, error) {
		triggered := cfg.Trigger != nil && cfg.Trigger(params.Source)
		return nil, runCollectorResult{Source: params.Source, Triggered: triggered}, nil
	})

	return server
}
