package item

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultChunkSize bounds the number of items per conditional write so a
// chunk stays under the backend's bound-parameter limit.
const DefaultChunkSize = 2000

type writeMode int

const (
	modeUpsert writeMode = iota
	modeInsertOnly
)

// Service reconciles batches of items against the store: one logical row per
// (source, source_id), last write wins.
type Service struct {
	items     Repository
	chunkSize int
	now       func() time.Time
	logger    *slog.Logger
}

// NewService creates a new item service. A non-positive chunkSize falls back
// to DefaultChunkSize.
func NewService(items Repository, chunkSize int, logger *slog.Logger) *Service {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		items:     items,
		chunkSize: chunkSize,
		now:       time.Now,
		logger:    logger,
	}
}

// Upsert writes a batch of items, inserting new keys and overwriting the
// mutable fields of existing ones. Duplicate keys within the batch collapse
// to the last occurrence before any store interaction.
//
// The returned count is the size of the batch the caller submitted, not the
// number of distinct rows affected.
func (s *Service) Upsert(ctx context.Context, items []*Item) (int, error) {
	return s.write(ctx, items, modeUpsert)
}

// InsertNew writes a batch of items, skipping any key that already exists.
// Used for data that is immutable once recorded, so a stale redelivery can
// never overwrite historical truth. Count semantics match Upsert.
func (s *Service) InsertNew(ctx context.Context, items []*Item) (int, error) {
	return s.write(ctx, items, modeInsertOnly)
}

// List returns stored items matching the given options.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*Item, error) {
	return s.items.List(ctx, opts)
}

// Get returns the stored item for an identity key.
func (s *Service) Get(ctx context.Context, source, sourceID string) (*Item, error) {
	return s.items.Get(ctx, source, sourceID)
}

func (s *Service) write(ctx context.Context, items []*Item, mode writeMode) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	if err := validate(items); err != nil {
		return 0, err
	}

	deduped := dedupe(items)
	syncedAt := s.now().UTC()

	for start := 0; start < len(deduped); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(deduped) {
			end = len(deduped)
		}
		chunk := deduped[start:end]

		var err error
		switch mode {
		case modeInsertOnly:
			err = s.items.InsertChunk(ctx, chunk, syncedAt)
		default:
			err = s.items.UpsertChunk(ctx, chunk, syncedAt)
		}
		if err != nil {
			// Committed chunks stand; the rest of the batch is abandoned.
			return 0, fmt.Errorf("writing chunk %d-%d: %w", start, end, err)
		}
	}

	s.logger.Debug("batch written",
		"items", len(items),
		"distinct", len(deduped),
		"chunk_size", s.chunkSize,
	)

	return len(items), nil
}

// validate rejects the whole batch if any item lacks its identity or
// classification fields. Runs before any store interaction.
func validate(items []*Item) error {
	for i, it := range items {
		switch {
		case it == nil:
			return fmt.Errorf("%w: item %d is nil", ErrInvalidItem, i)
		case it.Source == "":
			return fmt.Errorf("%w: item %d missing source", ErrInvalidItem, i)
		case it.SourceID == "":
			return fmt.Errorf("%w: item %d missing source_id", ErrInvalidItem, i)
		case it.Category == "":
			return fmt.Errorf("%w: item %d missing category", ErrInvalidItem, i)
		case it.ItemType == "":
			return fmt.Errorf("%w: item %d missing item_type", ErrInvalidItem, i)
		case it.CreatedAt.IsZero():
			return fmt.Errorf("%w: item %d missing created_at", ErrInvalidItem, i)
		}
	}
	return nil
}

// dedupe collapses duplicate keys to the last occurrence, keeping first-seen
// order so chunk boundaries stay deterministic.
func dedupe(items []*Item) []*Item {
	index := make(map[Key]int, len(items))
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		key := it.Key()
		if pos, seen := index[key]; seen {
			out[pos] = it
			continue
		}
		index[key] = len(out)
		out = append(out, it)
	}
	return out
}
