package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema. The unique index on (source, source_id)
// and the primary key on sync_state.source are part of the storage contract;
// the write paths rely on them for conflict targets.
func (db *DB) RunMigrations() error {
	migration := `
-- Universal data items: one row per (source, source_id)
CREATE TABLE IF NOT EXISTS data_items (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    source_id TEXT NOT NULL,
    category TEXT NOT NULL,
    item_type TEXT NOT NULL,
    title TEXT,
    content TEXT,
    metadata TEXT NOT NULL DEFAULT '{}',
    tags TEXT NOT NULL DEFAULT '[]',
    is_public INTEGER NOT NULL DEFAULT 0,
    source_url TEXT,
    created_at TIMESTAMP NOT NULL,
    synced_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_source_source_id ON data_items(source, source_id);
CREATE INDEX IF NOT EXISTS idx_items_category ON data_items(category);
CREATE INDEX IF NOT EXISTS idx_items_source ON data_items(source);
CREATE INDEX IF NOT EXISTS idx_items_created ON data_items(created_at DESC);

-- Per-source synchronization state
CREATE TABLE IF NOT EXISTS sync_state (
    source TEXT PRIMARY KEY,
    last_sync_at TIMESTAMP,
    next_sync_at TIMESTAMP,
    cursor TEXT NOT NULL DEFAULT '{}',
    status TEXT NOT NULL DEFAULT 'idle' CHECK(status IN ('idle', 'running', 'error')),
    error_message TEXT,
    items_synced INTEGER NOT NULL DEFAULT 0
);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
