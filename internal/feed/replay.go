// Package feed replays a generated dataset as a paced stream of daily
// readings, standing in for live sensor ingest. Each tick publishes one
// simulated day: every region's reading for that date in a single batch.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/verdantlab/envsim-dashboard/internal/domain"
	"github.com/verdantlab/envsim-dashboard/internal/observability"
)

// Publish retry backoff: start at 200ms, double each retry, cap at 5s.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Publisher delivers one day's batch of readings to a transport.
type Publisher interface {
	PublishDay(ctx context.Context, datasetID uuid.UUID, readings []domain.Reading) error
}

// Replayer walks a dataset day by day on a fixed interval.
type Replayer struct {
	pub      Publisher
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	interval time.Duration
	ready    atomic.Bool
}

// New creates a replayer. A nil clock means real time; tests inject a fake
// to drive ticks deterministically.
func New(pub Publisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, interval time.Duration) *Replayer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Replayer{
		pub:      pub,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
		interval: interval,
	}
}

// CheckReadiness returns nil once the replayer has published at least one
// day, or an error describing why the feed is not yet ready.
func (r *Replayer) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("feed has not published any readings yet")
	}
	return nil
}

// Run replays the dataset in date order until it is exhausted or the context
// is cancelled. A failed publish retries the same day with backoff rather
// than skipping it; replay never reorders or drops days.
func (r *Replayer) Run(ctx context.Context, ds domain.Dataset) error {
	days := groupByDay(ds.Readings)

	r.logger.Info("feed replay starting",
		"dataset_id", ds.ID,
		"year", ds.Year,
		"days", len(days),
		"interval", r.interval,
	)
	r.metrics.FeedRunning.Set(1)
	defer r.metrics.FeedRunning.Set(0)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for i, batch := range days {
		select {
		case <-ctx.Done():
			r.logger.Info("feed replay stopping", "reason", ctx.Err(), "days_replayed", i)
			return nil
		case <-ticker.Chan():
		}

		if !r.publishWithRetry(ctx, ds.ID, batch) {
			r.logger.Info("feed replay stopping", "reason", ctx.Err(), "days_replayed", i)
			return nil
		}
	}

	r.logger.Info("feed replay complete", "dataset_id", ds.ID, "days_replayed", len(days))
	return nil
}

// publishWithRetry publishes one day's batch, retrying with backoff on
// failure. Returns false if the context was cancelled before success.
func (r *Replayer) publishWithRetry(ctx context.Context, datasetID uuid.UUID, batch []domain.Reading) bool {
	backoff := initialBackoff
	for {
		start := time.Now()
		err := r.pub.PublishDay(ctx, datasetID, batch)
		if err == nil {
			r.metrics.PublishDuration.Observe(time.Since(start).Seconds())
			r.metrics.ReadingsPublished.Add(float64(len(batch)))
			r.metrics.DaysReplayed.Inc()
			r.ready.Store(true)
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		r.logger.Error("publish day failed",
			"error", err,
			"date", batch[0].Date.Format(domain.DateLayout),
			"readings", len(batch),
		)
		r.metrics.PublishErrors.Inc()

		if !r.sleep(ctx, backoff) {
			return false
		}
		backoff = nextBackoff(backoff)
	}
}

func (r *Replayer) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-r.clock.After(d):
		return true
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// groupByDay buckets readings by date and returns the batches in ascending
// date order. Generated datasets arrive region-major, so this reassembles
// the per-day view the feed needs.
func groupByDay(readings []domain.Reading) [][]domain.Reading {
	byDate := make(map[time.Time][]domain.Reading)
	for _, r := range readings {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	days := make([][]domain.Reading, 0, len(dates))
	for _, d := range dates {
		days = append(days, byDate[d])
	}
	return days
}
