package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siteatlas/siteatlas/internal/app"
)

// newCrawlCmd creates the 'crawl' subcommand: one full inventory cycle, then
// exit.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run one inventory cycle and exit",
		Long: `Crawls the configured domain once, saves the resulting inventory
snapshot, diffs it against the previous snapshot, renders the sitemap and
change report, and publishes the change event if a publisher is configured.`,

		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := app.New(ctx, rootCfg, rootLogger)
	if err != nil {
		return fmt.Errorf("initialize application services: %w", err)
	}
	defer a.Close()

	res, err := a.Runner.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("run inventory cycle: %w", err)
	}

	rootLogger.Info("crawl command finished",
		zap.String("inventory_id", res.Inventory.ID),
		zap.Int("pages", res.Inventory.Size()),
		zap.Int("new", len(res.Changes.NewURLs)),
		zap.Int("removed", len(res.Changes.RemovedURLs)),
	)
	return nil
}
