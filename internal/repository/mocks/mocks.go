package mocks

import (
	"context"
	"time"

	"github.com/lenish/personal-hub/internal/domain/collector"
	"github.com/lenish/personal-hub/internal/domain/item"
	"github.com/lenish/personal-hub/internal/domain/syncstate"
	"github.com/stretchr/testify/mock"
)

// ItemRepository is a mock for item.Repository.
type ItemRepository struct {
	mock.Mock
}

var _ item.Repository = (*ItemRepository)(nil)

func (m *ItemRepository) UpsertChunk(ctx context.Context, items []*item.Item, syncedAt time.Time) error {
	args := m.Called(ctx, items, syncedAt)
	return args.Error(0)
}

func (m *ItemRepository) InsertChunk(ctx context.Context, items []*item.Item, syncedAt time.Time) error {
	args := m.Called(ctx, items, syncedAt)
	return args.Error(0)
}

func (m *ItemRepository) List(ctx context.Context, opts item.ListOptions) ([]*item.Item, error) {
	args := m.Called(ctx, opts)
	if items, ok := args.Get(0).([]*item.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) Get(ctx context.Context, source, sourceID string) (*item.Item, error) {
	args := m.Called(ctx, source, sourceID)
	if it, ok := args.Get(0).(*item.Item); ok {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}

// SyncStateRepository is a mock for syncstate.Repository.
type SyncStateRepository struct {
	mock.Mock
}

var _ syncstate.Repository = (*SyncStateRepository)(nil)

func (m *SyncStateRepository) Get(ctx context.Context, source string) (*syncstate.State, error) {
	args := m.Called(ctx, source)
	if state, ok := args.Get(0).(*syncstate.State); ok {
		return state, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SyncStateRepository) List(ctx context.Context) ([]syncstate.State, error) {
	args := m.Called(ctx)
	if states, ok := args.Get(0).([]syncstate.State); ok {
		return states, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SyncStateRepository) Upsert(ctx context.Context, source string, lastSyncAt time.Time, upd syncstate.Update) error {
	args := m.Called(ctx, source, lastSyncAt, upd)
	return args.Error(0)
}

// StateTracker is a mock for collector.StateTracker.
type StateTracker struct {
	mock.Mock
}

var _ collector.StateTracker = (*StateTracker)(nil)

func (m *StateTracker) Update(ctx context.Context, source string, upd syncstate.Update) error {
	args := m.Called(ctx, source, upd)
	return args.Error(0)
}
