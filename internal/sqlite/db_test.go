package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"data_items",
		"sync_state",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestIdentityKeyUnique verifies the storage contract on (source, source_id)
func TestIdentityKeyUnique(t *testing.T) {
	db := NewTestDB(t)

	insert := `
		INSERT INTO data_items (id, source, source_id, category, item_type, created_at, synced_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	_, err := db.Exec(insert, "row1", "whoop", "rec-1", "health", "recovery")
	require.NoError(t, err)

	_, err = db.Exec(insert, "row2", "whoop", "rec-1", "health", "recovery")
	require.Error(t, err, "duplicate identity key must be rejected by the store")

	_, err = db.Exec(insert, "row3", "slack", "rec-1", "communication", "message")
	require.NoError(t, err, "same source_id under another source is a different key")
}
