// Command dashboard serves the environmental sensor dashboard: the HTML
// page, the JSON query API, and the usual health and metrics endpoints.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/verdantlab/envsim-dashboard/internal/adapter/httpapi"
	"github.com/verdantlab/envsim-dashboard/internal/config"
	"github.com/verdantlab/envsim-dashboard/internal/dashboard"
	"github.com/verdantlab/envsim-dashboard/internal/observability"
	"github.com/verdantlab/envsim-dashboard/internal/simulate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	gen := simulate.New(cfg.SimSeed)
	svc := dashboard.New(gen, logger, metrics, cfg.SimDefaultDays)
	svc.Warm()

	srv := httpapi.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
