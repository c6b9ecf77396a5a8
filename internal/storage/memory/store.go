// Package memory implements an in-memory inventory store for tests and
// ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/siteatlas/siteatlas/internal/inventory"
	"github.com/siteatlas/siteatlas/internal/storage"
)

// Store keeps inventories in a map guarded by a mutex.
type Store struct {
	mu          sync.Mutex
	inventories map[string]inventory.Inventory
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		inventories: make(map[string]inventory.Inventory),
	}
}

// Save stores a snapshot, rejecting duplicate IDs.
func (s *Store) Save(_ context.Context, inv inventory.Inventory) error {
	if inv.ID == "" {
		return fmt.Errorf("inventory id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.inventories[inv.ID]; exists {
		return fmt.Errorf("inventory %q already saved", inv.ID)
	}
	s.inventories[inv.ID] = inv
	return nil
}

// Latest returns the snapshot with the greatest ID.
func (s *Store) Latest(_ context.Context) (inventory.Inventory, error) {
	return s.nth(0)
}

// Previous returns the snapshot just before the latest one.
func (s *Store) Previous(_ context.Context) (inventory.Inventory, error) {
	return s.nth(1)
}

// nth returns the snapshot offset positions back from the newest.
func (s *Store) nth(offset int) (inventory.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inventories) <= offset {
		return inventory.Inventory{}, storage.ErrNotFound
	}
	ids := make([]string, 0, len(s.inventories))
	for id := range s.inventories {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return s.inventories[ids[offset]], nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
