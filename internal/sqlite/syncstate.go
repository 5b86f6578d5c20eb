package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lenish/personal-hub/internal/domain/syncstate"
	"github.com/lenish/personal-hub/internal/repository"
)

// SyncStateRepository implements syncstate.Repository for SQLite
type SyncStateRepository struct {
	db *DB
}

var _ syncstate.Repository = (*SyncStateRepository)(nil)

// NewSyncStateRepository creates a new SyncStateRepository
func NewSyncStateRepository(db *DB) *SyncStateRepository {
	return &SyncStateRepository{db: db}
}

// Upsert creates or updates the source's row. The conflict SET list is built
// per call: cursor and items_synced are only included when the update
// supplies them, so omitted fields keep their stored values.
func (r *SyncStateRepository) Upsert(ctx context.Context, source string, lastSyncAt time.Time, upd syncstate.Update) error {
	cursorJSON := "{}"
	if upd.Cursor != nil {
		data, err := json.Marshal(upd.Cursor)
		if err != nil {
			return fmt.Errorf("encoding cursor: %w", err)
		}
		cursorJSON = string(data)
	}

	itemsSynced := 0
	if upd.ItemsSynced != nil {
		itemsSynced = *upd.ItemsSynced
	}

	var errorMessage any
	if upd.Error != nil {
		errorMessage = *upd.Error
	}

	sets := []string{
		"last_sync_at = excluded.last_sync_at",
		"status = excluded.status",
		"error_message = excluded.error_message",
	}
	if upd.ItemsSynced != nil {
		sets = append(sets, "items_synced = excluded.items_synced")
	}
	if upd.Cursor != nil {
		sets = append(sets, "cursor = excluded.cursor")
	}

	query := `
		INSERT INTO sync_state (source, last_sync_at, status, error_message, items_synced, cursor)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET ` + strings.Join(sets, ", ")

	_, err := r.db.ExecContext(ctx, query,
		source,
		lastSyncAt,
		string(upd.Status),
		errorMessage,
		itemsSynced,
		cursorJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sync state: %w", err)
	}
	return nil
}

// Get retrieves the state for a source
func (r *SyncStateRepository) Get(ctx context.Context, source string) (*syncstate.State, error) {
	row := r.db.QueryRowContext(ctx, selectSyncState+` WHERE source = ?`, source)
	state, err := scanSyncState(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}
	return state, nil
}

// List returns the state of every known source
func (r *SyncStateRepository) List(ctx context.Context) ([]syncstate.State, error) {
	rows, err := r.db.QueryContext(ctx, selectSyncState+` ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync states: %w", err)
	}
	defer rows.Close()

	var states []syncstate.State
	for rows.Next() {
		state, err := scanSyncState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}
		states = append(states, *state)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync state rows: %w", err)
	}

	return states, nil
}

const selectSyncState = `
	SELECT source, last_sync_at, next_sync_at, cursor, status, error_message, items_synced
	FROM sync_state
`

func scanSyncState(row rowScanner) (*syncstate.State, error) {
	var (
		state        syncstate.State
		lastSyncAt   sql.NullTime
		nextSyncAt   sql.NullTime
		cursor       string
		errorMessage sql.NullString
	)

	err := row.Scan(
		&state.Source,
		&lastSyncAt,
		&nextSyncAt,
		&cursor,
		&state.Status,
		&errorMessage,
		&state.ItemsSynced,
	)
	if err != nil {
		return nil, err
	}

	if lastSyncAt.Valid {
		state.LastSyncAt = &lastSyncAt.Time
	}
	if nextSyncAt.Valid {
		state.NextSyncAt = &nextSyncAt.Time
	}
	state.ErrorMessage = errorMessage.String

	if err := json.Unmarshal([]byte(cursor), &state.Cursor); err != nil {
		return nil, fmt.Errorf("decoding cursor: %w", err)
	}

	return &state, nil
}
