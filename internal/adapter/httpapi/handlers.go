package httpapi

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verdantlab/envsim-dashboard/internal/chart"
	"github.com/verdantlab/envsim-dashboard/internal/dashboard"
	"github.com/verdantlab/envsim-dashboard/internal/domain"
)

// Request bounds for the days override. The lower bound matches the
// generator contract; the upper bound keeps a single request from asking
// for decades of synthetic data.
const (
	minDays = 1
	maxDays = 3650
)

type metaResponse struct {
	Regions     []string            `json:"regions"`
	Metrics     []domain.MetricSpec `json:"metrics"`
	ChartTypes  []chartTypeOption   `json:"chart_types"`
	Years       []int               `json:"years"`
	DefaultYear int                 `json:"default_year"`
	DefaultDays int                 `json:"default_days"`
}

type chartTypeOption struct {
	Value chart.Type `json:"value"`
	Label string     `json:"label"`
}

type readingsResponse struct {
	DatasetID   string           `json:"dataset_id"`
	Year        int              `json:"year"`
	Days        int              `json:"days"`
	GeneratedAt time.Time        `json:"generated_at"`
	Start       string           `json:"start"`
	End         string           `json:"end"`
	Region      string           `json:"region"`
	Count       int              `json:"count"`
	Readings    []domain.Reading `json:"readings"`
}

type summaryResponse struct {
	DatasetID string        `json:"dataset_id"`
	Year      int           `json:"year"`
	Days      int           `json:"days"`
	Start     string        `json:"start"`
	End       string        `json:"end"`
	Region    string        `json:"region"`
	Count     int           `json:"count"`
	Means     meansPayload  `json:"means"`
	Insights  []string      `json:"insights"`
	Cards     []cardPayload `json:"cards"`
}

// meansPayload carries the per-metric means with NaN rendered as null.
type meansPayload struct {
	AirQualityPM25 *float64 `json:"air_quality_pm25"`
	SoilMoisture   *float64 `json:"soil_moisture"`
	PollutionIndex *float64 `json:"pollution_index"`
}

// cardPayload is one pre-formatted summary card for the page.
type cardPayload struct {
	Metric domain.Metric `json:"metric"`
	Title  string        `json:"title"`
	Value  string        `json:"value"`
}

type chartsResponse struct {
	DatasetID string        `json:"dataset_id"`
	Type      chart.Type    `json:"type"`
	Start     string        `json:"start"`
	End       string        `json:"end"`
	Region    string        `json:"region"`
	Count     int           `json:"count"`
	Charts    []chart.Chart `json:"charts"`
}

func (s *Server) handleMeta(w http.ResponseWriter, _ *http.Request) {
	metrics := make([]domain.MetricSpec, 0, len(domain.Metrics()))
	for _, m := range domain.Metrics() {
		metrics = append(metrics, m.Spec())
	}

	chartTypes := make([]chartTypeOption, 0, len(chart.Types()))
	for _, t := range chart.Types() {
		chartTypes = append(chartTypes, chartTypeOption{Value: t, Label: t.Label()})
	}

	writeJSON(w, http.StatusOK, metaResponse{
		Regions:     regionOptions(),
		Metrics:     metrics,
		ChartTypes:  chartTypes,
		Years:       domain.YearOptions(),
		DefaultYear: domain.Now().UTC().Year(),
		DefaultDays: s.dash.DefaultDays(),
	})
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res := s.dash.Query(r.Context(), q)
	writeJSON(w, http.StatusOK, readingsResponse{
		DatasetID:   res.DatasetID.String(),
		Year:        res.Year,
		Days:        res.Days,
		GeneratedAt: res.GeneratedAt,
		Start:       res.Window.Start.Format(domain.DateLayout),
		End:         res.Window.End.Format(domain.DateLayout),
		Region:      res.Region.String(),
		Count:       len(res.Readings),
		Readings:    res.Readings,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res := s.dash.Query(r.Context(), q)
	insights := res.Insights
	if insights == nil {
		insights = []string{}
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		DatasetID: res.DatasetID.String(),
		Year:      res.Year,
		Days:      res.Days,
		Start:     res.Window.Start.Format(domain.DateLayout),
		End:       res.Window.End.Format(domain.DateLayout),
		Region:    res.Region.String(),
		Count:     res.Summary.Count,
		Means: meansPayload{
			AirQualityPM25: meanValue(res.Summary.AirQualityPM25),
			SoilMoisture:   meanValue(res.Summary.SoilMoisture),
			PollutionIndex: meanValue(res.Summary.PollutionIndex),
		},
		Insights: insights,
		Cards:    cards(res.Summary),
	})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	chartType := chart.TypeLine
	if v := r.URL.Query().Get("type"); v != "" {
		chartType, err = chart.ParseType(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	metrics, err := parseMetrics(r.URL.Query().Get("metrics"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res := s.dash.Query(r.Context(), q)
	charts := make([]chart.Chart, 0, len(metrics))
	for _, m := range metrics {
		charts = append(charts, chart.Build(chartType, m, res.Readings))
	}

	writeJSON(w, http.StatusOK, chartsResponse{
		DatasetID: res.DatasetID.String(),
		Type:      chartType,
		Start:     res.Window.Start.Format(domain.DateLayout),
		End:       res.Window.End.Format(domain.DateLayout),
		Region:    res.Region.String(),
		Count:     len(res.Readings),
		Charts:    charts,
	})
}

// parseQuery extracts the dataset and filter parameters shared by the
// readings, summary, and charts endpoints, applying defaults for anything
// unset: current year, configured day count, the dataset's full date range,
// and all regions.
func (s *Server) parseQuery(r *http.Request) (dashboard.Query, error) {
	q := dashboard.Query{
		Year: domain.Now().UTC().Year(),
		Days: s.dash.DefaultDays(),
	}
	vals := r.URL.Query()

	if v := vals.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 || year > 9999 {
			return q, fmt.Errorf("invalid year %q", v)
		}
		q.Year = year
	}
	if v := vals.Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < minDays || days > maxDays {
			return q, fmt.Errorf("invalid days %q", v)
		}
		q.Days = days
	}

	start := domain.StartOfYear(q.Year)
	end := start.AddDate(0, 0, q.Days-1)
	if v := vals.Get("start"); v != "" {
		t, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return q, fmt.Errorf("invalid start date %q", v)
		}
		start = t
	}
	if v := vals.Get("end"); v != "" {
		t, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return q, fmt.Errorf("invalid end date %q", v)
		}
		end = t
	}
	q.Window = domain.NewWindow(start, end)

	region, err := domain.ParseRegionFilter(vals.Get("region"))
	if err != nil {
		return q, err
	}
	q.Region = region
	return q, nil
}

// parseMetrics interprets the comma-separated metrics parameter. Empty
// selects all metrics in display order.
func parseMetrics(v string) ([]domain.Metric, error) {
	if v == "" {
		return domain.Metrics(), nil
	}
	parts := strings.Split(v, ",")
	metrics := make([]domain.Metric, 0, len(parts))
	for _, p := range parts {
		m, err := domain.ParseMetric(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// regionOptions lists the region selector values: "All" first, then the
// region labels alphabetically.
func regionOptions() []string {
	names := make([]string, 0, len(domain.Regions()))
	for _, r := range domain.Regions() {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return append([]string{"All"}, names...)
}

// meanValue maps a NaN mean to nil so it serializes as JSON null.
func meanValue(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// cards renders the three summary cards the way the page shows them:
// two-decimal means with the metric's unit, or "n/a" when the selection
// is empty. Percent units attach directly, other units after a space.
func cards(sum domain.Summary) []cardPayload {
	out := make([]cardPayload, 0, len(domain.Metrics()))
	for _, m := range domain.Metrics() {
		spec := m.Spec()
		value := "n/a"
		if mean := sum.Mean(m); !math.IsNaN(mean) {
			value = fmt.Sprintf("%.2f", mean)
			switch spec.Unit {
			case "":
			case "%":
				value += spec.Unit
			default:
				value += " " + spec.Unit
			}
		}
		out = append(out, cardPayload{Metric: m, Title: spec.CardTitle, Value: value})
	}
	return out
}
