package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siteatlas/siteatlas/internal/api"
	"github.com/siteatlas/siteatlas/internal/app"
	"github.com/siteatlas/siteatlas/internal/scheduler"
)

const shutdownGrace = 10 * time.Second

// newServeCmd creates the 'serve' subcommand: scheduled inventory cycles
// plus the HTTP API.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled inventory cycles and the HTTP API",
		Long: `Starts the HTTP server exposing the latest inventory, sitemap, change
report, health probes, and Prometheus metrics, and runs one inventory cycle
per configured interval until interrupted.`,

		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, rootCfg, rootLogger)
	if err != nil {
		return fmt.Errorf("initialize application services: %w", err)
	}
	defer a.Close()

	sched, err := scheduler.New(a.Runner, rootCfg.Scheduler.Interval, rootLogger)
	if err != nil {
		return fmt.Errorf("initialize scheduler: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", rootCfg.Server.Port),
		Handler:           api.NewServer(a.Store, rootLogger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		rootLogger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("scheduler: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		rootLogger.Info("shutdown signal received")
	case runErr = <-errCh:
		rootLogger.Error("service failed", zap.Error(runErr))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		rootLogger.Warn("http server shutdown", zap.Error(err))
	}
	return runErr
}
