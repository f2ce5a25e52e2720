// Package dashboard owns the currently loaded dataset and answers the
// filtered reading, summary, and insight queries behind the HTTP API.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlab/envsim-dashboard/internal/domain"
	"github.com/verdantlab/envsim-dashboard/internal/observability"
	"github.com/verdantlab/envsim-dashboard/internal/simulate"
)

// Query is one dashboard request after boundary parsing: which dataset
// parameters to serve and how to filter the readings.
type Query struct {
	Year   int
	Days   int
	Window domain.Window
	Region domain.RegionFilter
}

// Result carries everything a dashboard view needs: the filtered readings,
// their summary and insights, and the identity of the dataset they came from.
type Result struct {
	DatasetID   uuid.UUID
	Year        int
	Days        int
	GeneratedAt time.Time
	Window      domain.Window
	Region      domain.RegionFilter
	Readings    []domain.Reading
	Summary     domain.Summary
	Insights    []string
}

// Service holds the single current dataset and regenerates it when a query
// asks for different (year, days) parameters. Filter changes never
// regenerate; the same dataset is re-filtered on every query.
type Service struct {
	gen         *simulate.Generator
	logger      *slog.Logger
	metrics     *observability.Metrics
	defaultDays int

	mu      sync.Mutex
	current domain.Dataset
	ready   atomic.Bool
}

// New wires a query service around a generator. No dataset exists until
// Warm or the first Query runs.
func New(gen *simulate.Generator, logger *slog.Logger, metrics *observability.Metrics, defaultDays int) *Service {
	return &Service{
		gen:         gen,
		logger:      logger,
		metrics:     metrics,
		defaultDays: defaultDays,
	}
}

// DefaultDays returns the day count used when a request does not override it.
func (s *Service) DefaultDays() int {
	return s.defaultDays
}

// Warm generates the initial dataset for the current year so the first
// request finds it already loaded.
func (s *Service) Warm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(domain.Now().UTC().Year(), s.defaultDays)
}

// CheckReadiness returns nil once a dataset has been generated.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no dataset generated yet")
	}
	return nil
}

// Query serves one dashboard request: it makes sure the current dataset
// matches the requested parameters, then filters, summarizes, and derives
// insights. The returned readings slice is shared with the dataset and must
// not be mutated.
func (s *Service) Query(_ context.Context, q Query) Result {
	start := time.Now()

	s.mu.Lock()
	s.ensure(q.Year, q.Days)
	ds := s.current
	s.mu.Unlock()

	readings := domain.Filter(ds.Readings, q.Window, q.Region)
	summary := domain.Summarize(readings)

	s.metrics.QueriesServed.Inc()
	s.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	s.metrics.ReadingsReturned.Observe(float64(len(readings)))

	return Result{
		DatasetID:   ds.ID,
		Year:        ds.Year,
		Days:        ds.Days,
		GeneratedAt: ds.GeneratedAt,
		Window:      q.Window,
		Region:      q.Region,
		Readings:    readings,
		Summary:     summary,
		Insights:    domain.Insights(summary),
	}
}

// ensure regenerates the current dataset when the requested parameters
// differ from the loaded ones. Callers must hold s.mu.
func (s *Service) ensure(year, days int) {
	if s.ready.Load() && s.current.Year == year && s.current.Days == days {
		return
	}

	start := time.Now()
	s.current = s.gen.Generate(year, days)
	s.ready.Store(true)

	s.metrics.DatasetsGenerated.Inc()
	s.metrics.DatasetGenerationDuration.Observe(time.Since(start).Seconds())
	s.metrics.CurrentDatasetReadings.Set(float64(len(s.current.Readings)))

	s.logger.Info("dataset generated",
		"dataset_id", s.current.ID,
		"year", year,
		"days", days,
		"readings", len(s.current.Readings),
	)
}
