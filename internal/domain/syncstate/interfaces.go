package syncstate

import (
	"context"
	"time"
)

// Repository provides persistence for sync state.
type Repository interface {
	// Get returns the state for a source, or repository.ErrNotFound if the
	// source has never been written.
	Get(ctx context.Context, source string) (*State, error)
	List(ctx context.Context) ([]State, error)
	// Upsert creates or updates the source's row. lastSyncAt is written
	// unconditionally; nil ItemsSynced/Cursor in upd preserve stored values.
	Upsert(ctx context.Context, source string, lastSyncAt time.Time, upd Update) error
}
