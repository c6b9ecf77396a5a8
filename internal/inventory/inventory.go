// Package inventory defines the crawl inventory model: the per-page records
// accumulated during a run, the immutable snapshot produced at the end of it,
// and the diff between two chronologically ordered snapshots.
package inventory

import (
	"sync"
	"time"
)

// PageRecord is the metadata kept for one discovered in-scope page.
type PageRecord struct {
	URL          string    `json:"url"`
	LastModified time.Time `json:"last_modified"`
	Priority     float64   `json:"priority"`
}

// Inventory is one complete snapshot of a crawl run. ID is a UUIDv7, so
// sorting inventories by ID orders them chronologically.
type Inventory struct {
	ID          string                `json:"id"`
	GeneratedAt time.Time             `json:"generated_at"`
	URLs        map[string]PageRecord `json:"urls"`
}

// Size returns the number of recorded pages.
func (inv Inventory) Size() int {
	return len(inv.URLs)
}

// Builder accumulates PageRecords from concurrent crawl workers.
// Writes are append-only; the first record stored for a URL wins.
type Builder struct {
	mu      sync.Mutex
	records map[string]PageRecord
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		records: make(map[string]PageRecord),
	}
}

// Add stores the record unless one already exists for the same URL.
// It reports whether the record was stored.
func (b *Builder) Add(rec PageRecord) bool {
	if rec.URL == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.records[rec.URL]; exists {
		return false
	}
	b.records[rec.URL] = rec
	return true
}

// Len returns the number of records accumulated so far.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Snapshot produces an immutable Inventory from the accumulated records.
// The Builder can keep accepting writes afterwards; the snapshot holds its
// own copy of the map.
func (b *Builder) Snapshot(id string, generatedAt time.Time) Inventory {
	b.mu.Lock()
	defer b.mu.Unlock()
	urls := make(map[string]PageRecord, len(b.records))
	for k, v := range b.records {
		urls[k] = v
	}
	return Inventory{
		ID:          id,
		GeneratedAt: generatedAt,
		URLs:        urls,
	}
}
