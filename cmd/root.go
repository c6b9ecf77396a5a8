// Package cmd defines the CLI commands for the siteatlas executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siteatlas/siteatlas/internal/config"
	"github.com/siteatlas/siteatlas/internal/logging"
)

var (
	cfgFile string

	rootCfg    config.Config
	rootLogger *zap.Logger
)

// newRootCmd creates and configures the root command. Configuration and the
// logger are built in PersistentPreRunE so every subcommand sees the same
// instances.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "siteatlas",
		Short: "Single-domain site inventory crawler",
		Long: `siteatlas crawls one web domain, records every reachable in-scope page
with its priority, and diffs each inventory snapshot against the previous one.
It can run a single cycle (crawl) or serve continuously on a schedule (serve).`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			rootCfg = cfg
			rootLogger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if rootLogger != nil {
				_ = rootLogger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default reads SITEATLAS_* environment variables)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
