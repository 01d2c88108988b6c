package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aryannaik/nb-bookmarks/internal/index"
	"github.com/aryannaik/nb-bookmarks/internal/server"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve bookmarks and tags over a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	store := index.NewStore()
	handlers := server.NewHandlers(newService(), store, cfg.TagCacheTTL, logger)
	srv := server.New(cfg.Port, handlers, logger)

	// A failed first load is reported by /api/status and retried on demand.
	if err := handlers.Refresh(ctx); err != nil {
		logger.Warn("initial load failed", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var tick <-chan time.Time
	if cfg.RefreshInterval > 0 {
		ticker := time.NewTicker(cfg.RefreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

loop:
	for {
		select {
		case <-tick:
			logger.Info("periodic refresh starting")
			_ = handlers.Refresh(ctx)
		case err := <-errCh:
			if err != nil {
				return err
			}
			break loop
		case <-ctx.Done():
			break loop
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}
	return nil
}
