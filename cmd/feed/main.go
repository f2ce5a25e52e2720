// Command feed generates a dataset and replays it onto a message transport
// as a paced stream of daily readings, one batch per simulated day. The
// transport is Kafka by default; FEED_TRANSPORT=mqtt switches to MQTT.
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
	kafkaadapter "github.com/verdantlab/envsim-dashboard/internal/adapter/kafka"
	mqttadapter "github.com/verdantlab/envsim-dashboard/internal/adapter/mqtt"
	"github.com/verdantlab/envsim-dashboard/internal/config"
	"github.com/verdantlab/envsim-dashboard/internal/domain"
	"github.com/verdantlab/envsim-dashboard/internal/feed"
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

	year := cfg.FeedYear
	if year == 0 {
		year = domain.Now().UTC().Year()
	}
	gen := simulate.New(cfg.SimSeed)
	ds := gen.Generate(year, cfg.SimDefaultDays)

	var pub feed.Publisher
	var closePub func() error
	switch cfg.FeedTransport {
	case config.TransportMQTT:
		mp, err := mqttadapter.NewPublisher(cfg, logger)
		if err != nil {
			logger.Error("mqtt connect failed", "error", err)
			os.Exit(1)
		}
		pub, closePub = mp, mp.Close
	default:
		kw := kafkaadapter.NewWriter(cfg, logger)
		pub, closePub = kw, kw.Close
	}

	rep := feed.New(pub, logger, metrics, nil, cfg.FeedInterval)
	srv := httpapi.NewOpsServer(cfg.HTTPAddr, rep, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Replay runs until the dataset is exhausted or a signal arrives; either
	// way the process shuts down afterwards.
	go func() {
		if err := rep.Run(ctx, ds); err != nil {
			logger.Error("feed replay error", "error", err)
		}
		stop()
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := closePub(); err != nil {
		logger.Error("publisher close error", "error", err)
	}

	logger.Info("shutdown complete")
}
