package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlab/envsim-dashboard/internal/adapter/httpapi"
	"github.com/verdantlab/envsim-dashboard/internal/domain"
)

// --- response shapes ---

type metaBody struct {
	Regions []string `json:"regions"`
	Metrics []struct {
		Metric    string  `json:"metric"`
		Label     string  `json:"label"`
		CardTitle string  `json:"card_title"`
		Unit      string  `json:"unit"`
		Min       float64 `json:"min"`
		Max       float64 `json:"max"`
	} `json:"metrics"`
	ChartTypes []struct {
		Value string `json:"value"`
		Label string `json:"label"`
	} `json:"chart_types"`
	Years       []int `json:"years"`
	DefaultYear int   `json:"default_year"`
	DefaultDays int   `json:"default_days"`
}

type readingsBody struct {
	DatasetID string           `json:"dataset_id"`
	Year      int              `json:"year"`
	Days      int              `json:"days"`
	Start     string           `json:"start"`
	End       string           `json:"end"`
	Region    string           `json:"region"`
	Count     int              `json:"count"`
	Readings  []domain.Reading `json:"readings"`
}

type summaryBody struct {
	DatasetID string `json:"dataset_id"`
	Count     int    `json:"count"`
	Means     struct {
		AirQualityPM25 *float64 `json:"air_quality_pm25"`
		SoilMoisture   *float64 `json:"soil_moisture"`
		PollutionIndex *float64 `json:"pollution_index"`
	} `json:"means"`
	Insights []string `json:"insights"`
	Cards    []struct {
		Metric string `json:"metric"`
		Title  string `json:"title"`
		Value  string `json:"value"`
	} `json:"cards"`
}

type chartsBody struct {
	DatasetID string `json:"dataset_id"`
	Type      string `json:"type"`
	Count     int    `json:"count"`
	Charts    []struct {
		Metric string         `json:"metric"`
		Title  string         `json:"title"`
		Option map[string]any `json:"option"`
		Grid   *struct {
			Regions []string    `json:"regions"`
			Dates   []string    `json:"dates"`
			Values  [][]float64 `json:"values"`
			Min     float64     `json:"min"`
			Max     float64     `json:"max"`
		} `json:"grid"`
	} `json:"charts"`
}

// --- helpers ---

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func doGet(t *testing.T, srv *httpapi.Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// --- tests ---

func TestMetaEndpoint(t *testing.T) {
	freezeClock(t)
	srv, _ := newTestServer(t)

	rec := doGet(t, srv, "/api/meta")

	require.Equal(t, http.StatusOK, rec.Code)

	var body metaBody
	decode(t, rec, &body)

	assert.Equal(t, []string{"All", "East", "North", "South", "West"}, body.Regions)

	require.Len(t, body.Metrics, 3)
	assert.Equal(t, "air_quality_pm25", body.Metrics[0].Metric)
	assert.Equal(t, "Air Quality PM2.5", body.Metrics[0].Label)
	assert.Equal(t, "Avg PM2.5", body.Metrics[0].CardTitle)
	assert.Equal(t, "µg/m³", body.Metrics[0].Unit)
	assert.Equal(t, 10.0, body.Metrics[0].Min)
	assert.Equal(t, 150.0, body.Metrics[0].Max)
	assert.Equal(t, "pollution_index", body.Metrics[2].Metric)
	assert.Empty(t, body.Metrics[2].Unit)

	require.Len(t, body.ChartTypes, 4)
	assert.Equal(t, "line", body.ChartTypes[0].Value)
	assert.Equal(t, "Line", body.ChartTypes[0].Label)
	assert.Equal(t, "heatmap", body.ChartTypes[3].Value)

	assert.Equal(t, []int{2022, 2023, 2024, 2025, 2026}, body.Years)
	assert.Equal(t, 2024, body.DefaultYear)
	assert.Equal(t, 30, body.DefaultDays)
}

func TestReadingsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doGet(t, srv, "/api/readings?year=2024&days=10&region=North&start=2024-01-01&end=2024-01-05")

	require.Equal(t, http.StatusOK, rec.Code)

	var body readingsBody
	decode(t, rec, &body)

	assert.NotEmpty(t, body.DatasetID)
	assert.Equal(t, 2024, body.Year)
	assert.Equal(t, 10, body.Days)
	assert.Equal(t, "2024-01-01", body.Start)
	assert.Equal(t, "2024-01-05", body.End)
	assert.Equal(t, "North", body.Region)
	assert.Equal(t, 5, body.Count)
	require.Len(t, body.Readings, 5)
	for _, r := range body.Readings {
		assert.Equal(t, domain.RegionNorth, r.Region)
	}

	// Dates go over the wire as plain calendar days.
	assert.Contains(t, rec.Body.String(), `"date":"2024-01-01"`)
}

func TestReadingsEndpoint_Defaults(t *testing.T) {
	freezeClock(t)
	srv, _ := newTestServer(t)

	rec := doGet(t, srv, "/api/readings")

	require.Equal(t, http.StatusOK, rec.Code)

	var body readingsBody
	decode(t, rec, &body)

	assert.Equal(t, 2024, body.Year)
	assert.Equal(t, 30, body.Days)
	assert.Equal(t, "2024-01-01", body.Start)
	assert.Equal(t, "2024-01-30", body.End)
	assert.Equal(t, "All", body.Region)
	assert.Equal(t, 120, body.Count) // 4 regions x 30 days
}

func TestReadingsEndpoint_InvertedWindow(t *testing.T) {
	srv, _ := newTestServer(t)

	// Start after end is an empty selection, not a client error.
	rec := doGet(t, srv, "/api/readings?year=2024&days=10&start=2024-01-05&end=2024-01-01")

	require.Equal(t, http.StatusOK, rec.Code)

	var body readingsBody
	decode(t, rec, &body)

	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Readings)
	assert.Empty(t, body.Readings)
}

func TestSummaryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doGet(t, srv, "/api/summary?year=2024&days=10&start=2024-01-01&end=2024-01-10")

	require.Equal(t, http.StatusOK, rec.Code)

	var body summaryBody
	decode(t, rec, &body)

	assert.Equal(t, 40, body.Count)

	require.NotNil(t, body.Means.AirQualityPM25)
	require.NotNil(t, body.Means.SoilMoisture)
	require.NotNil(t, body.Means.PollutionIndex)
	assert.GreaterOrEqual(t, *body.Means.AirQualityPM25, 10.0)
	assert.LessOrEqual(t, *body.Means.AirQualityPM25, 150.0)

	assert.Len(t, body.Insights, 3)

	require.Len(t, body.Cards, 3)
	assert.Equal(t, "Avg PM2.5", body.Cards[0].Title)
	assert.True(t, strings.HasSuffix(body.Cards[0].Value, " µg/m³"), "got %q", body.Cards[0].Value)
	assert.Equal(t, "Avg Soil Moisture", body.Cards[1].Title)
	assert.True(t, strings.HasSuffix(body.Cards[1].Value, "%"), "got %q", body.Cards[1].Value)
	assert.NotContains(t, body.Cards[1].Value, " ")
	assert.Equal(t, "Avg Pollution Index", body.Cards[2].Title)
	assert.NotContains(t, body.Cards[2].Value, " ")
}

func TestSummaryEndpoint_EmptySelection(t *testing.T) {
	srv, _ := newTestServer(t)

	// A valid window with no readings in it.
	rec := doGet(t, srv, "/api/summary?year=2024&days=10&start=2024-06-01&end=2024-06-10")

	require.Equal(t, http.StatusOK, rec.Code)

	var body summaryBody
	decode(t, rec, &body)

	assert.Equal(t, 0, body.Count)
	assert.Nil(t, body.Means.AirQualityPM25)
	assert.Nil(t, body.Means.SoilMoisture)
	assert.Nil(t, body.Means.PollutionIndex)
	assert.NotNil(t, body.Insights)
	assert.Empty(t, body.Insights)
	require.Len(t, body.Cards, 3)
	for _, c := range body.Cards {
		assert.Equal(t, "n/a", c.Value)
	}

	// NaN means must serialize as null, not NaN.
	assert.Contains(t, rec.Body.String(), `"air_quality_pm25":null`)
}

func TestChartsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	const base = "/api/charts?year=2024&days=5&start=2024-01-01&end=2024-01-05"

	t.Run("defaults to line for all metrics", func(t *testing.T) {
		rec := doGet(t, srv, base)

		require.Equal(t, http.StatusOK, rec.Code)

		var body chartsBody
		decode(t, rec, &body)

		assert.Equal(t, "line", body.Type)
		assert.Equal(t, 20, body.Count)
		require.Len(t, body.Charts, 3)
		assert.Equal(t, "air_quality_pm25", body.Charts[0].Metric)
		assert.Equal(t, "soil_moisture", body.Charts[1].Metric)
		assert.Equal(t, "pollution_index", body.Charts[2].Metric)
		for _, c := range body.Charts {
			assert.NotNil(t, c.Option)
			assert.Nil(t, c.Grid)
		}
	})

	t.Run("metrics selection keeps request order", func(t *testing.T) {
		rec := doGet(t, srv, base+"&metrics=pollution_index,air_quality_pm25")

		require.Equal(t, http.StatusOK, rec.Code)

		var body chartsBody
		decode(t, rec, &body)

		require.Len(t, body.Charts, 2)
		assert.Equal(t, "pollution_index", body.Charts[0].Metric)
		assert.Equal(t, "air_quality_pm25", body.Charts[1].Metric)
	})

	t.Run("heatmap returns grids", func(t *testing.T) {
		rec := doGet(t, srv, base+"&type=heatmap")

		require.Equal(t, http.StatusOK, rec.Code)

		var body chartsBody
		decode(t, rec, &body)

		assert.Equal(t, "heatmap", body.Type)
		require.Len(t, body.Charts, 3)
		for _, c := range body.Charts {
			assert.Nil(t, c.Option)
			require.NotNil(t, c.Grid)
			assert.Equal(t, []string{"East", "North", "South", "West"}, c.Grid.Regions)
			require.Len(t, c.Grid.Dates, 5)
			require.Len(t, c.Grid.Values, 4)
			assert.Len(t, c.Grid.Values[0], 5)
		}
	})
}

func TestAPIBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"year not a number", "/api/readings?year=abc", "invalid year"},
		{"year zero", "/api/readings?year=0", "invalid year"},
		{"days zero", "/api/readings?days=0", "invalid days"},
		{"days too large", "/api/readings?days=9999", "invalid days"},
		{"bad start date", "/api/readings?start=01-01-2024", "invalid start date"},
		{"bad end date", "/api/readings?end=junk", "invalid end date"},
		{"unknown region", "/api/readings?region=Central", "unknown region"},
		{"unknown chart type", "/api/charts?type=pie", "unknown chart type"},
		{"unknown metric", "/api/charts?metrics=humidity", "unknown metric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, srv, tt.url)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			decode(t, rec, &body)
			assert.Contains(t, body["error"], tt.want)
		})
	}
}
