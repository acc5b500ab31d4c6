package testutil

import (
	"context"
	"sync"

	"github.com/thenoetrevino/nutriboard/internal/database"
	"github.com/thenoetrevino/nutriboard/internal/models"
)

// FaultyStore wraps a DataStore and fails selected calls.
// It also counts reads and writes so tests can assert on I/O.
type FaultyStore struct {
	database.DataStore

	mu sync.Mutex

	// UpdateMembersErr fails UpdateColumnMembers for the given column IDs
	UpdateMembersErr map[string]error
	// UpdateStatusErr fails every UpdateClientStatus call when set
	UpdateStatusErr error
	// ListColumnsErr fails ListColumns when set
	ListColumnsErr error
	// ListClientsErr fails ListClients when set
	ListClientsErr error
	// DropWrites makes UpdateColumnMembers report success without writing
	DropWrites map[string]bool
	// BeforeUpdateMembers runs before every UpdateColumnMembers call
	BeforeUpdateMembers func(columnID string)

	Reads        int
	ColumnWrites int
	StatusWrites int
}

// NewFaultyStore wraps store with no faults configured
func NewFaultyStore(store database.DataStore) *FaultyStore {
	return &FaultyStore{
		DataStore:        store,
		UpdateMembersErr: make(map[string]error),
		DropWrites:       make(map[string]bool),
	}
}

func (s *FaultyStore) countRead() {
	s.mu.Lock()
	s.Reads++
	s.mu.Unlock()
}

// ListColumns counts the read and fails when configured
func (s *FaultyStore) ListColumns(ctx context.Context) ([]*models.Column, error) {
	s.countRead()
	if s.ListColumnsErr != nil {
		return nil, s.ListColumnsErr
	}
	return s.DataStore.ListColumns(ctx)
}

// GetColumn counts the read
func (s *FaultyStore) GetColumn(ctx context.Context, id string) (*models.Column, error) {
	s.countRead()
	return s.DataStore.GetColumn(ctx, id)
}

// ListClients counts the read and fails when configured
func (s *FaultyStore) ListClients(ctx context.Context) ([]*models.Client, error) {
	s.countRead()
	if s.ListClientsErr != nil {
		return nil, s.ListClientsErr
	}
	return s.DataStore.ListClients(ctx)
}

// GetClient counts the read
func (s *FaultyStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	s.countRead()
	return s.DataStore.GetClient(ctx, id)
}

// UpdateColumnMembers fails, drops, or forwards the write
func (s *FaultyStore) UpdateColumnMembers(ctx context.Context, id string, members []string) error {
	if s.BeforeUpdateMembers != nil {
		s.BeforeUpdateMembers(id)
	}
	if err := s.UpdateMembersErr[id]; err != nil {
		return err
	}
	s.mu.Lock()
	s.ColumnWrites++
	s.mu.Unlock()
	if s.DropWrites[id] {
		return nil
	}
	return s.DataStore.UpdateColumnMembers(ctx, id, members)
}

// UpdateClientStatus fails or forwards the write
func (s *FaultyStore) UpdateClientStatus(ctx context.Context, id string, status models.Status) error {
	if s.UpdateStatusErr != nil {
		return s.UpdateStatusErr
	}
	s.mu.Lock()
	s.StatusWrites++
	s.mu.Unlock()
	return s.DataStore.UpdateClientStatus(ctx, id, status)
}

// ResetCounters zeroes the I/O counters
func (s *FaultyStore) ResetCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads, s.ColumnWrites, s.StatusWrites = 0, 0, 0
}
