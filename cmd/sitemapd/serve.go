package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romangod6/sitemapd/internal/api"
	"github.com/romangod6/sitemapd/internal/content"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve sitemaps and keep the content index fresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	a, err := openApp(opts.cfg, "server")
	if err != nil {
		return err
	}
	defer a.Close()

	logger := a.logger.Logger
	indexer := a.indexer()

	if _, err := indexer.Run(ctx); err != nil {
		logger.Error("Initial content index failed", zap.Error(err))
	}

	handler := api.NewHandler(a.store, a.generator(), api.HandlerConfig{
		SiteURL:     opts.cfg.SiteURL(),
		CacheMaxAge: opts.cfg.CacheMaxAge(),
		Indexer:     indexer,
		Logger:      logger,
	})
	server := api.NewServer(opts.cfg.Server.Port, handler)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Setup periodic indexing
	g.Go(func() error {
		runIndexLoop(gctx, indexer, opts.cfg.IndexInterval(), logger)
		return nil
	})

	// Start the API server
	g.Go(func() error {
		logger.Info("Starting API server", zap.Int("port", opts.cfg.Server.Port))
		return server.Start()
	})

	// Wait for shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", zap.Error(err))
			return err
		}
		logger.Info("Server shut down gracefully")
		return nil
	})

	return g.Wait()
}

// runIndexLoop re-indexes every interval until ctx is done. A non-positive
// interval disables periodic indexing.
func runIndexLoop(ctx context.Context, indexer *content.Indexer, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Starting periodic content index...")
			if _, err := indexer.Run(ctx); err != nil {
				logger.Error("Content index failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
