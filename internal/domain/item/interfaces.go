package item

import (
	"context"
	"time"
)

// Repository provides persistence for items. A chunk write is atomic: either
// every item in the chunk lands or none does.
type Repository interface {
	// UpsertChunk inserts the chunk, replacing the mutable fields of any row
	// whose key already exists. syncedAt is written on every row, new or not.
	UpsertChunk(ctx context.Context, items []*Item, syncedAt time.Time) error
	// InsertChunk inserts the chunk, leaving rows with conflicting keys
	// entirely untouched.
	InsertChunk(ctx context.Context, items []*Item, syncedAt time.Time) error
	List(ctx context.Context, opts ListOptions) ([]*Item, error)
	Get(ctx context.Context, source, sourceID string) (*Item, error)
}
