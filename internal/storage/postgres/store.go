// Package postgres implements a Postgres-backed inventory store.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siteatlas/siteatlas/internal/inventory"
	"github.com/siteatlas/siteatlas/internal/storage"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for inventory rows.
type Config struct {
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	Table           string        `mapstructure:"table" yaml:"table"`
	MaxConns        int32         `mapstructure:"max_conns" yaml:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns" yaml:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime" yaml:"max_conn_lifetime"`
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store writes inventory snapshots into Postgres. Rows hold the snapshot ID,
// its generation timestamp, and the full snapshot as JSONB:
//
//	CREATE TABLE inventories (
//		id TEXT PRIMARY KEY,
//		generated_at TIMESTAMPTZ NOT NULL,
//		payload JSONB NOT NULL
//	);
type Store struct {
	pool  querier
	table string
}

// New creates a Postgres-backed Store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("storage.postgres.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "inventories"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for testing).
func NewWithPool(pool querier, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "inventories"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Save inserts one snapshot row.
func (s *Store) Save(ctx context.Context, inv inventory.Inventory) error {
	if inv.ID == "" {
		return fmt.Errorf("inventory id is required")
	}
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (id, generated_at, payload) VALUES ($1, $2, $3)`, s.table)
	if _, err := s.pool.Exec(ctx, query, inv.ID, inv.GeneratedAt, payload); err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot.
func (s *Store) Latest(ctx context.Context) (inventory.Inventory, error) {
	return s.nth(ctx, 0)
}

// Previous returns the snapshot before the latest one.
func (s *Store) Previous(ctx context.Context) (inventory.Inventory, error) {
	return s.nth(ctx, 1)
}

// nth reads the snapshot offset rows back from the newest. UUIDv7 IDs sort
// lexicographically in generation order, so ORDER BY id is chronological.
func (s *Store) nth(ctx context.Context, offset int) (inventory.Inventory, error) {
	query := fmt.Sprintf(
		`SELECT payload FROM %s ORDER BY id DESC LIMIT 1 OFFSET $1`, s.table)
	var payload []byte
	err := s.pool.QueryRow(ctx, query, offset).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inventory.Inventory{}, storage.ErrNotFound
		}
		return inventory.Inventory{}, fmt.Errorf("query inventory: %w", err)
	}
	var inv inventory.Inventory
	if err := json.Unmarshal(payload, &inv); err != nil {
		return inventory.Inventory{}, fmt.Errorf("decode inventory payload: %w", err)
	}
	return inv, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}
