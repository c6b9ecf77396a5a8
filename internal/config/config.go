// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	pubsubpublisher "github.com/siteatlas/siteatlas/internal/publisher/pubsub"
	"github.com/siteatlas/siteatlas/internal/storage/gcs"
	"github.com/siteatlas/siteatlas/internal/storage/local"
	"github.com/siteatlas/siteatlas/internal/storage/postgres"
)

// Storage backend names accepted in storage.backend.
const (
	BackendMemory   = "memory"
	BackendLocal    = "local"
	BackendPostgres = "postgres"
)

// Publisher backend names accepted in publisher.backend.
const (
	PublisherNone   = "none"
	PublisherPubSub = "pubsub"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// CrawlerConfig governs one crawl run.
type CrawlerConfig struct {
	StartURL         string        `mapstructure:"start_url"`
	Domain           string        `mapstructure:"domain"`
	ExcludedPatterns []string      `mapstructure:"excluded_patterns"`
	TrackingParams   []string      `mapstructure:"tracking_params"`
	Concurrency      int           `mapstructure:"concurrency"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	Deadline         time.Duration `mapstructure:"deadline"`
	UserAgent        string        `mapstructure:"user_agent"`
}

// StorageConfig selects and configures the inventory store backend.
type StorageConfig struct {
	Backend  string          `mapstructure:"backend"`
	Local    local.Config    `mapstructure:"local"`
	Postgres postgres.Config `mapstructure:"postgres"`
}

// ArchiveConfig configures artifact archival. An empty bucket disables it.
type ArchiveConfig struct {
	GCS gcs.Config `mapstructure:"gcs"`
}

// PublisherConfig selects and configures the change event publisher.
type PublisherConfig struct {
	Backend string                 `mapstructure:"backend"`
	PubSub  pubsubpublisher.Config `mapstructure:"pubsub"`
}

// SchedulerConfig controls the serve-mode crawl cadence.
type SchedulerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITEATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawler.concurrency", 8)
	v.SetDefault("crawler.fetch_timeout", "15s")
	v.SetDefault("crawler.deadline", "0s")
	v.SetDefault("crawler.user_agent", "siteatlas-bot/0.1")
	v.SetDefault("storage.backend", BackendLocal)
	v.SetDefault("storage.local.base_dir", "./inventories")
	v.SetDefault("storage.postgres.table", "inventories")
	v.SetDefault("publisher.backend", PublisherNone)
	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.StartURL == "" {
		return fmt.Errorf("crawler.start_url must be set")
	}
	if c.Crawler.Domain == "" {
		return fmt.Errorf("crawler.domain must be set")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.FetchTimeout <= 0 {
		return fmt.Errorf("crawler.fetch_timeout must be > 0")
	}
	if c.Crawler.Deadline < 0 {
		return fmt.Errorf("crawler.deadline must be >= 0")
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendLocal:
		if c.Storage.Local.BaseDir == "" {
			return fmt.Errorf("storage.local.base_dir must be set")
		}
	case BackendPostgres:
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn must be set")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	switch c.Publisher.Backend {
	case PublisherNone:
	case PublisherPubSub:
		if c.Publisher.PubSub.ProjectID == "" || c.Publisher.PubSub.Topic == "" {
			return fmt.Errorf("publisher.pubsub.project_id and topic must be set")
		}
	default:
		return fmt.Errorf("unknown publisher.backend %q", c.Publisher.Backend)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be > 0")
	}
	return nil
}
