// Package local implements a filesystem-backed inventory store. Each
// snapshot is one JSON file named by its UUIDv7 ID, so lexicographic
// filename order is chronological order.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/siteatlas/siteatlas/internal/inventory"
	"github.com/siteatlas/siteatlas/internal/storage"
)

// Config captures the parameters for the filesystem store.
type Config struct {
	// BaseDir is the directory holding inventory snapshot files.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// Store persists inventories as JSON files under a base directory.
type Store struct {
	baseDir string
}

// New creates the base directory if needed and verifies it is writable.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat base directory: %w", err)
		}
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	probe := filepath.Join(cfg.BaseDir, ".writable_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}

	return &Store{baseDir: cfg.BaseDir}, nil
}

// Save writes the snapshot as <id>.json. An existing file for the same ID
// fails the save.
func (s *Store) Save(_ context.Context, inv inventory.Inventory) error {
	if inv.ID == "" {
		return fmt.Errorf("inventory id is required")
	}
	path := filepath.Join(s.baseDir, inv.ID+".json")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("inventory %q already saved", inv.ID)
	}
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write inventory file: %w", err)
	}
	return nil
}

// Latest returns the newest snapshot on disk.
func (s *Store) Latest(_ context.Context) (inventory.Inventory, error) {
	return s.nth(0)
}

// Previous returns the snapshot before the newest one.
func (s *Store) Previous(_ context.Context) (inventory.Inventory, error) {
	return s.nth(1)
}

func (s *Store) nth(offset int) (inventory.Inventory, error) {
	names, err := s.snapshotNames()
	if err != nil {
		return inventory.Inventory{}, err
	}
	if len(names) <= offset {
		return inventory.Inventory{}, storage.ErrNotFound
	}
	path := filepath.Join(s.baseDir, names[offset])
	data, err := os.ReadFile(path)
	if err != nil {
		return inventory.Inventory{}, fmt.Errorf("read inventory file: %w", err)
	}
	var inv inventory.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return inventory.Inventory{}, fmt.Errorf("decode inventory file %s: %w", path, err)
	}
	return inv, nil
}

// snapshotNames lists snapshot filenames newest first.
func (s *Store) snapshotNames() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list base directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Close is a no-op for the filesystem store.
func (s *Store) Close() error {
	return nil
}
