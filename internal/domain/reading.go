package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for calendar days in query parameters,
// JSON fixtures, and CSV exports.
const DateLayout = "2006-01-02"

// Region identifies one of the four fixed monitoring regions.
type Region string

const (
	RegionNorth Region = "North"
	RegionSouth Region = "South"
	RegionEast  Region = "East"
	RegionWest  Region = "West"
)

// Regions returns all regions in generation order. The order is part of the
// determinism contract: a seeded generator emits region blocks in this order.
func Regions() []Region {
	return []Region{RegionNorth, RegionSouth, RegionEast, RegionWest}
}

// ParseRegion validates a region label.
func ParseRegion(s string) (Region, error) {
	switch Region(s) {
	case RegionNorth, RegionSouth, RegionEast, RegionWest:
		return Region(s), nil
	default:
		return "", fmt.Errorf("unknown region %q", s)
	}
}

// Metric identifies one of the three tracked environmental measurements.
type Metric string

const (
	MetricAirQualityPM25 Metric = "air_quality_pm25"
	MetricSoilMoisture   Metric = "soil_moisture"
	MetricPollutionIndex Metric = "pollution_index"
)

// Metrics returns all metrics in display order (air, soil, pollution).
func Metrics() []Metric {
	return []Metric{MetricAirQualityPM25, MetricSoilMoisture, MetricPollutionIndex}
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricAirQualityPM25, MetricSoilMoisture, MetricPollutionIndex:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// MetricSpec describes how one metric is simulated and displayed. Label is
// the metric's display name, CardTitle the heading of its summary card.
// Mean and StdDev parameterize the normal distribution the daily walk steps
// are drawn from; Damping divides the cumulative sum to control growth rate;
// Min and Max are the inclusive clamp bounds every value is forced into.
type MetricSpec struct {
	Metric    Metric  `json:"metric"`
	Label     string  `json:"label"`
	CardTitle string  `json:"card_title"`
	Unit      string  `json:"unit,omitempty"`
	Mean      float64 `json:"-"`
	StdDev    float64 `json:"-"`
	Damping   float64 `json:"-"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// Spec returns the simulation parameters for a metric. Unknown metrics return
// the zero spec; callers that parse metrics first never see it.
func (m Metric) Spec() MetricSpec {
	switch m {
	case MetricAirQualityPM25:
		return MetricSpec{Metric: m, Label: "Air Quality PM2.5", CardTitle: "Avg PM2.5", Unit: "µg/m³", Mean: 50, StdDev: 10, Damping: 5, Min: 10, Max: 150}
	case MetricSoilMoisture:
		return MetricSpec{Metric: m, Label: "Soil Moisture", CardTitle: "Avg Soil Moisture", Unit: "%", Mean: 30, StdDev: 5, Damping: 3, Min: 10, Max: 80}
	case MetricPollutionIndex:
		return MetricSpec{Metric: m, Label: "Pollution Index", CardTitle: "Avg Pollution Index", Mean: 40, StdDev: 8, Damping: 4, Min: 5, Max: 120}
	default:
		return MetricSpec{}
	}
}

// Reading is one simulated observation: the three metric values for one
// region on one calendar day. Date carries no time component (midnight UTC).
type Reading struct {
	Date           time.Time
	Region         Region
	AirQualityPM25 float64
	SoilMoisture   float64
	PollutionIndex float64
}

// readingJSON is the wire form of a Reading: the date as a plain calendar
// day, not RFC 3339.
type readingJSON struct {
	Date           string  `json:"date"`
	Region         Region  `json:"region"`
	AirQualityPM25 float64 `json:"air_quality_pm25"`
	SoilMoisture   float64 `json:"soil_moisture"`
	PollutionIndex float64 `json:"pollution_index"`
}

// MarshalJSON renders the reading with its date in DateLayout form.
func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(readingJSON{
		Date:           r.Date.Format(DateLayout),
		Region:         r.Region,
		AirQualityPM25: r.AirQualityPM25,
		SoilMoisture:   r.SoilMoisture,
		PollutionIndex: r.PollutionIndex,
	})
}

// UnmarshalJSON parses the wire form, validating the region label and the
// date layout.
func (r *Reading) UnmarshalJSON(b []byte) error {
	var w readingJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, w.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", w.Date, err)
	}
	region, err := ParseRegion(string(w.Region))
	if err != nil {
		return err
	}
	r.Date = date
	r.Region = region
	r.AirQualityPM25 = w.AirQualityPM25
	r.SoilMoisture = w.SoilMoisture
	r.PollutionIndex = w.PollutionIndex
	return nil
}

// Value returns the reading's value for the given metric.
func (r Reading) Value(m Metric) float64 {
	switch m {
	case MetricAirQualityPM25:
		return r.AirQualityPM25
	case MetricSoilMoisture:
		return r.SoilMoisture
	case MetricPollutionIndex:
		return r.PollutionIndex
	default:
		return 0
	}
}

// Dataset is one generated table of readings for a (year, days) parameter
// pair: exactly len(Regions()) × Days rows, region-major, date-ascending
// within each region. Datasets are regenerated from scratch when the
// parameters change and are never mutated in place.
type Dataset struct {
	ID          uuid.UUID `json:"id"`
	Year        int       `json:"year"`
	Days        int       `json:"days"`
	GeneratedAt time.Time `json:"generated_at"`
	Readings    []Reading `json:"readings"`
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfYear returns January 1 of the given year, midnight UTC.
func StartOfYear(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
