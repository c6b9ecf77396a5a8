// Package runner orchestrates one complete inventory cycle: crawl the site,
// snapshot the result, diff it against the previous snapshot, persist, render
// artifacts, and publish the change event.
package runner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/siteatlas/siteatlas/internal/crawler"
	"github.com/siteatlas/siteatlas/internal/inventory"
	"github.com/siteatlas/siteatlas/internal/publisher"
	"github.com/siteatlas/siteatlas/internal/report"
	"github.com/siteatlas/siteatlas/internal/storage"
)

// Engine is the crawl entry point the runner drives.
type Engine interface {
	Run(ctx context.Context) (*inventory.Builder, crawler.Stats, error)
}

// Runner wires the crawl engine to persistence, rendering, and publishing.
type Runner struct {
	engine    Engine
	ids       crawler.IDGenerator
	clock     crawler.Clock
	store     storage.InventoryStore
	archiver  storage.Archiver
	publisher publisher.Publisher
	topic     string
	logger    *zap.Logger
}

// New constructs a Runner. Archiver and publisher may be the no-op
// implementations; store, engine, ids, and clock are required.
func New(
	engine Engine,
	ids crawler.IDGenerator,
	clock crawler.Clock,
	store storage.InventoryStore,
	archiver storage.Archiver,
	pub publisher.Publisher,
	topic string,
	logger *zap.Logger,
) (*Runner, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if ids == nil {
		return nil, fmt.Errorf("id generator is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if store == nil {
		return nil, fmt.Errorf("inventory store is required")
	}
	if archiver == nil {
		archiver = storage.NoopArchiver{}
	}
	if pub == nil {
		pub = publisher.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		engine:    engine,
		ids:       ids,
		clock:     clock,
		store:     store,
		archiver:  archiver,
		publisher: pub,
		topic:     topic,
		logger:    logger,
	}, nil
}

// Result is what one completed cycle produced.
type Result struct {
	Inventory inventory.Inventory
	Changes   inventory.ChangeReport
	Stats     crawler.Stats
}

// RunOnce executes one full cycle. On the first ever run there is no
// previous snapshot; the change report then lists every URL as new.
func (r *Runner) RunOnce(ctx context.Context) (Result, error) {
	builder, stats, err := r.engine.Run(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("crawl: %w", err)
	}

	id, err := r.ids.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("generate inventory id: %w", err)
	}
	current := builder.Snapshot(id, r.clock.Now())

	previous, err := r.store.Latest(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return Result{}, fmt.Errorf("load previous inventory: %w", err)
	}
	changes := inventory.Diff(previous, current)

	if err := r.store.Save(ctx, current); err != nil {
		return Result{}, fmt.Errorf("save inventory: %w", err)
	}

	if err := r.archive(ctx, current, changes); err != nil {
		// Artifact upload failures do not invalidate the persisted
		// inventory; log and carry on.
		r.logger.Warn("archive artifacts", zap.Error(err))
	}

	if r.topic != "" {
		if _, err := r.publisher.Publish(ctx, r.topic, changes); err != nil {
			r.logger.Warn("publish change event", zap.Error(err))
		}
	}

	r.logger.Info("inventory cycle complete",
		zap.String("inventory_id", current.ID),
		zap.Int("pages", current.Size()),
		zap.Int("new", len(changes.NewURLs)),
		zap.Int("removed", len(changes.RemovedURLs)),
		zap.Int("count_delta", changes.CountDelta),
	)
	return Result{Inventory: current, Changes: changes, Stats: stats}, nil
}

func (r *Runner) archive(ctx context.Context, inv inventory.Inventory, changes inventory.ChangeReport) error {
	sitemap, err := report.Sitemap(inv)
	if err != nil {
		return err
	}
	if err := r.archiver.Save(ctx, inv.ID+"/sitemap.xml", sitemap); err != nil {
		return err
	}
	changesJSON, err := report.Changes(changes)
	if err != nil {
		return err
	}
	return r.archiver.Save(ctx, inv.ID+"/changes.json", changesJSON)
}
