// Package storage defines the persistence interfaces for crawl inventories
// and rendered artifacts. Implementations live in subpackages so the rest of
// the application stays independent of any one backend.
package storage

import (
	"context"
	"errors"

	"github.com/siteatlas/siteatlas/internal/inventory"
)

// ErrNotFound is returned when a requested inventory does not exist, for
// example on the very first run when there is no previous snapshot to diff
// against.
var ErrNotFound = errors.New("inventory not found")

// InventoryStore persists inventory snapshots and retrieves them in
// chronological order. Inventory IDs are UUIDv7, so the backend can order by
// ID alone.
type InventoryStore interface {
	// Save persists one snapshot. Saving the same ID twice is an error.
	Save(ctx context.Context, inv inventory.Inventory) error
	// Latest returns the most recently generated snapshot, or ErrNotFound.
	Latest(ctx context.Context) (inventory.Inventory, error)
	// Previous returns the snapshot before the latest one, or ErrNotFound.
	Previous(ctx context.Context) (inventory.Inventory, error)
	// Close releases backend resources.
	Close() error
}

// Archiver uploads rendered artifacts (sitemap XML, change reports) to a
// blob store keyed by object name.
type Archiver interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// NoopArchiver discards every artifact. Used when no archive bucket is
// configured.
type NoopArchiver struct{}

// Save does nothing and always succeeds.
func (NoopArchiver) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}
