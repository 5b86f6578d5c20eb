package syncstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/lenish/personal-hub/internal/domain/item"
	"github.com/lenish/personal-hub/internal/repository"
)

// Service tracks per-source run outcomes and pagination cursors. It has no
// state machine of its own; transitions are driven by the collection runner.
type Service struct {
	states Repository
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a new sync-state service.
func NewService(states Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		states: states,
		now:    time.Now,
		logger: logger,
	}
}

// Cursor returns the stored pagination cursor for a source, or an empty
// document when the source has no recorded state yet. Only storage failures
// surface as errors.
func (s *Service) Cursor(ctx context.Context, source string) (item.Document, error) {
	state, err := s.states.Get(ctx, source)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return item.Document{}, nil
		}
		return nil, fmt.Errorf("loading sync state: %w", err)
	}
	if state.Cursor == nil {
		return item.Document{}, nil
	}
	return state.Cursor, nil
}

// Get returns the full state for a source.
func (s *Service) Get(ctx context.Context, source string) (*State, error) {
	return s.states.Get(ctx, source)
}

// List returns the state of every known source.
func (s *Service) List(ctx context.Context) ([]State, error) {
	return s.states.List(ctx)
}

// Update upserts the source's row. LastSyncAt is always set to the current
// time. Error messages are truncated to MaxErrorLen before storage.
func (s *Service) Update(ctx context.Context, source string, upd Update) error {
	if source == "" {
		return fmt.Errorf("%w: missing source", repository.ErrInvalidInput)
	}
	if upd.Status == "" {
		upd.Status = StatusIdle
	}
	if upd.Error != nil {
		truncated := truncate(*upd.Error, MaxErrorLen)
		upd.Error = &truncated
	}

	if err := s.states.Upsert(ctx, source, s.now().UTC(), upd); err != nil {
		return fmt.Errorf("updating sync state: %w", err)
	}
	return nil
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
