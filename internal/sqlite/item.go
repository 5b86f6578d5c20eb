package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lenish/personal-hub/internal/domain/item"
	"github.com/lenish/personal-hub/internal/repository"
)

// itemColumns is the number of bound variables per row in a chunk write,
// which together with the chunk size must stay under SQLite's variable limit.
const itemColumns = 13

// ItemRepository implements item.Repository for SQLite
type ItemRepository struct {
	db *DB
}

var _ item.Repository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// UpsertChunk writes one chunk atomically, replacing the mutable fields of
// rows whose key already exists. The identity key and surrogate id are
// immutable once set; synced_at is written on every row either way.
func (r *ItemRepository) UpsertChunk(ctx context.Context, items []*item.Item, syncedAt time.Time) error {
	const onConflict = `
		ON CONFLICT(source, source_id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			metadata = excluded.metadata,
			tags = excluded.tags,
			is_public = excluded.is_public,
			source_url = excluded.source_url,
			created_at = excluded.created_at,
			synced_at = excluded.synced_at
	`
	return r.writeChunk(ctx, items, syncedAt, onConflict)
}

// InsertChunk writes one chunk atomically, leaving rows with conflicting
// keys entirely untouched.
func (r *ItemRepository) InsertChunk(ctx context.Context, items []*item.Item, syncedAt time.Time) error {
	return r.writeChunk(ctx, items, syncedAt, "ON CONFLICT(source, source_id) DO NOTHING")
}

func (r *ItemRepository) writeChunk(ctx context.Context, items []*item.Item, syncedAt time.Time, onConflict string) error {
	if len(items) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(items))
	args := make([]any, 0, len(items)*itemColumns)
	for _, it := range items {
		metadata, err := marshalDocument(it.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for %s/%s: %w", it.Source, it.SourceID, err)
		}
		tags, err := marshalTags(it.Tags)
		if err != nil {
			return fmt.Errorf("encoding tags for %s/%s: %w", it.Source, it.SourceID, err)
		}

		it.SyncedAt = syncedAt
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			uuid.NewString(),
			it.Source,
			it.SourceID,
			it.Category,
			it.ItemType,
			nullIfEmpty(it.Title),
			nullIfEmpty(it.Content),
			metadata,
			tags,
			it.IsPublic,
			nullIfEmpty(it.SourceURL),
			it.CreatedAt.UTC(),
			syncedAt,
		)
	}

	query := `
		INSERT INTO data_items (
			id, source, source_id, category, item_type, title, content,
			metadata, tags, is_public, source_url, created_at, synced_at
		) VALUES ` + strings.Join(placeholders, ", ") + onConflict

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("writing item chunk: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item chunk: %w", err)
	}
	return nil
}

// Get retrieves an item by its identity key
func (r *ItemRepository) Get(ctx context.Context, source, sourceID string) (*item.Item, error) {
	query := selectItems + ` WHERE source = ? AND source_id = ?`

	row := r.db.QueryRowContext(ctx, query, source, sourceID)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// List returns items matching the given options, newest first
func (r *ItemRepository) List(ctx context.Context, opts item.ListOptions) ([]*item.Item, error) {
	query := selectItems
	conditions := []string{}
	args := []any{}

	if opts.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, opts.Source)
	}
	if opts.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.ItemType != "" {
		conditions = append(conditions, "item_type = ?")
		args = append(args, opts.ItemType)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		// OFFSET is only valid after a LIMIT clause; -1 means unlimited.
		query += " LIMIT -1"
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

const selectItems = `
	SELECT
		id, source, source_id, category, item_type, title, content,
		metadata, tags, is_public, source_url, created_at, synced_at
	FROM data_items
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*item.Item, error) {
	var (
		it        item.Item
		title     sql.NullString
		content   sql.NullString
		sourceURL sql.NullString
		metadata  string
		tags      string
	)

	err := row.Scan(
		&it.ID,
		&it.Source,
		&it.SourceID,
		&it.Category,
		&it.ItemType,
		&title,
		&content,
		&metadata,
		&tags,
		&it.IsPublic,
		&sourceURL,
		&it.CreatedAt,
		&it.SyncedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Title = title.String
	it.Content = content.String
	it.SourceURL = sourceURL.String

	if err := json.Unmarshal([]byte(metadata), &it.Metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}

	return &it, nil
}

func marshalDocument(doc item.Document) (string, error) {
	if doc == nil {
		return "{}", nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
