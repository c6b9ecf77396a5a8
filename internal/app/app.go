// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/siteatlas/siteatlas/internal/clock/system"
	"github.com/siteatlas/siteatlas/internal/config"
	"github.com/siteatlas/siteatlas/internal/crawler"
	"github.com/siteatlas/siteatlas/internal/id/uuid"
	"github.com/siteatlas/siteatlas/internal/publisher"
	publisherpubsub "github.com/siteatlas/siteatlas/internal/publisher/pubsub"
	"github.com/siteatlas/siteatlas/internal/runner"
	"github.com/siteatlas/siteatlas/internal/storage"
	"github.com/siteatlas/siteatlas/internal/storage/gcs"
	"github.com/siteatlas/siteatlas/internal/storage/local"
	storagememory "github.com/siteatlas/siteatlas/internal/storage/memory"
	"github.com/siteatlas/siteatlas/internal/storage/postgres"
)

// App holds the shared, long-lived services for the application. It is
// initialized once at startup and passed to the commands that need it.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Store     storage.InventoryStore
	Archiver  storage.Archiver
	Publisher publisher.Publisher
	Runner    *runner.Runner

	closers []func() error
}

// New creates the service graph from configuration: the inventory store, the
// artifact archiver, the change publisher, the crawl engine, and the runner
// that ties them together. It fails fast if any backend cannot be reached.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	store, err := buildStore(ctx, cfg, a)
	if err != nil {
		return nil, err
	}
	a.Store = store

	archiver, err := buildArchiver(ctx, cfg, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Archiver = archiver

	pub, err := buildPublisher(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Publisher = pub

	crawlCfg := crawler.Config{
		StartURL:         cfg.Crawler.StartURL,
		Domain:           cfg.Crawler.Domain,
		ExcludedPatterns: cfg.Crawler.ExcludedPatterns,
		TrackingParams:   cfg.Crawler.TrackingParams,
		Concurrency:      cfg.Crawler.Concurrency,
		FetchTimeout:     cfg.Crawler.FetchTimeout,
		Deadline:         cfg.Crawler.Deadline,
		UserAgent:        cfg.Crawler.UserAgent,
	}
	if err := crawlCfg.Validate(); err != nil {
		a.Close()
		return nil, err
	}
	filter, err := crawler.NewFilter(crawlCfg.Domain, crawlCfg.ExcludedPatterns, crawlCfg.TrackingParams)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build url filter: %w", err)
	}
	fetcher, err := crawler.NewCollyFetcher(crawlCfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build fetcher: %w", err)
	}
	engine := crawler.NewEngine(crawlCfg, fetcher, filter, system.Clock{}, logger)

	run, err := runner.New(engine, uuid.New(), system.Clock{}, store, archiver, pub, cfg.Publisher.PubSub.Topic, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Runner = run
	return a, nil
}

// Close releases every backend resource the App opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close service", zap.Error(err))
		}
	}
	a.closers = nil
}

func buildStore(ctx context.Context, cfg config.Config, a *App) (storage.InventoryStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		a.Logger.Info("using in-memory inventory store")
		return storagememory.New(), nil
	case config.BackendLocal:
		a.Logger.Info("using local inventory store", zap.String("base_dir", cfg.Storage.Local.BaseDir))
		return local.New(cfg.Storage.Local)
	case config.BackendPostgres:
		a.Logger.Info("using postgres inventory store")
		store, err := postgres.New(ctx, cfg.Storage.Postgres)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func buildArchiver(ctx context.Context, cfg config.Config, logger *zap.Logger, a *App) (storage.Archiver, error) {
	if cfg.Archive.GCS.Bucket == "" {
		a.Logger.Info("artifact archival disabled")
		return storage.NoopArchiver{}, nil
	}
	a.Logger.Info("using gcs archiver", zap.String("bucket", cfg.Archive.GCS.Bucket))
	archiver, err := gcs.New(ctx, cfg.Archive.GCS, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize gcs archiver: %w", err)
	}
	a.closers = append(a.closers, archiver.Close)
	return archiver, nil
}

func buildPublisher(ctx context.Context, cfg config.Config, a *App) (publisher.Publisher, error) {
	switch cfg.Publisher.Backend {
	case config.PublisherNone:
		a.Logger.Info("change event publishing disabled")
		return publisher.Noop{}, nil
	case config.PublisherPubSub:
		a.Logger.Info("using pubsub publisher",
			zap.String("project", cfg.Publisher.PubSub.ProjectID),
			zap.String("topic", cfg.Publisher.PubSub.Topic),
		)
		pub, err := publisherpubsub.New(ctx, cfg.Publisher.PubSub)
		if err != nil {
			return nil, fmt.Errorf("initialize pubsub publisher: %w", err)
		}
		a.closers = append(a.closers, pub.Close)
		return pub, nil
	default:
		return nil, fmt.Errorf("unknown publisher backend %q", cfg.Publisher.Backend)
	}
}
