package syncstate

import (
	"time"

	"github.com/lenish/personal-hub/internal/domain/item"
)

// Status represents the recorded outcome of a source's most recent run.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusError   Status = "error"
)

// MaxErrorLen bounds the stored error message of a failed run.
const MaxErrorLen = 500

// State is the per-source synchronization record: one row per source,
// created implicitly on first write and never deleted.
type State struct {
	Source       string        `json:"source"`
	LastSyncAt   *time.Time    `json:"last_sync_at,omitempty"`
	NextSyncAt   *time.Time    `json:"next_sync_at,omitempty"`
	Cursor       item.Document `json:"cursor"`
	Status       Status        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	ItemsSynced  int           `json:"items_synced"`
}

// Update describes one sync-state write. Status is always applied and
// ErrorMessage is always overwritten (cleared when Error is nil). Cursor and
// ItemsSynced are applied only when non-nil; when omitted the stored values
// are preserved, so a status-only transition never clobbers pagination
// progress or the last successful count.
type Update struct {
	Status      Status
	Error       *string
	ItemsSynced *int
	Cursor      item.Document
}
