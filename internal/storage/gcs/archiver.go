// Package gcs implements the artifact Archiver on Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// Config captures the parameters for the GCS archiver.
type Config struct {
	// Bucket is the destination bucket for rendered artifacts.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
	// Prefix is prepended to every object name, e.g. "siteatlas/".
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// Archiver uploads artifacts to a GCS bucket. Authentication goes through
// Application Default Credentials.
type Archiver struct {
	client *storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// New initializes a GCS client and verifies the bucket is reachable, so a
// misconfigured deployment fails at startup instead of at the first upload.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Archiver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage.gcs.bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if _, err := client.Bucket(cfg.Bucket).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("close gcs client after failed bucket check", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("get gcs bucket %q attributes: %w", cfg.Bucket, err)
	}
	return &Archiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

// Save uploads data to the configured bucket under prefix+objectName.
func (a *Archiver) Save(ctx context.Context, objectName string, data []byte) error {
	if objectName == "" {
		return fmt.Errorf("object name is required")
	}
	wc := a.client.Bucket(a.bucket).Object(a.prefix + objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			a.logger.Warn("close gcs writer after write failure", zap.Error(closeErr))
		}
		return fmt.Errorf("write gcs object %s: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("finalize gcs object %s: %w", objectName, err)
	}
	return nil
}

// Close releases the underlying client.
func (a *Archiver) Close() error {
	return a.client.Close()
}
