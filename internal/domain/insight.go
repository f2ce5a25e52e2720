package domain

import "math"

// Threshold values the insight rules compare period means against. The
// comparisons are strict: a mean exactly at the threshold takes the calm
// branch.
const (
	PM25HighThreshold      = 80.0
	SoilMoistureLowLimit   = 25.0
	PollutionHighThreshold = 70.0
)

// Insight messages, one pair per metric.
const (
	InsightAirHigh       = "Air pollution is high in the selected period."
	InsightAirGood       = "Air quality is moderate/good."
	InsightSoilLow       = "Soil moisture is low; irrigation recommended."
	InsightSoilStable    = "Soil moisture is stable and healthy."
	InsightPollutionHigh = "Pollution levels are high; environmental risk detected."
	InsightPollutionSafe = "Pollution levels are within a safe range."
)

// Summary holds the arithmetic mean of each metric over a set of readings,
// along with the number of readings that contributed.
type Summary struct {
	Count          int
	AirQualityPM25 float64
	SoilMoisture   float64
	PollutionIndex float64
}

// Mean returns the summary's mean for the given metric.
func (s Summary) Mean(m Metric) float64 {
	switch m {
	case MetricAirQualityPM25:
		return s.AirQualityPM25
	case MetricSoilMoisture:
		return s.SoilMoisture
	case MetricPollutionIndex:
		return s.PollutionIndex
	default:
		return math.NaN()
	}
}

// Summarize computes the per-metric means of a reading set. With no readings
// every mean is NaN; callers rendering JSON map NaN to null.
func Summarize(readings []Reading) Summary {
	s := Summary{Count: len(readings)}
	if len(readings) == 0 {
		s.AirQualityPM25 = math.NaN()
		s.SoilMoisture = math.NaN()
		s.PollutionIndex = math.NaN()
		return s
	}
	for _, r := range readings {
		s.AirQualityPM25 += r.AirQualityPM25
		s.SoilMoisture += r.SoilMoisture
		s.PollutionIndex += r.PollutionIndex
	}
	n := float64(len(readings))
	s.AirQualityPM25 /= n
	s.SoilMoisture /= n
	s.PollutionIndex /= n
	return s
}

// Insights derives one threshold judgment per metric from a summary, always
// in metric order: air quality, soil moisture, pollution. An empty summary
// yields no insights; a NaN mean must not silently satisfy a calm branch.
func Insights(s Summary) []string {
	if s.Count == 0 {
		return nil
	}
	out := make([]string, 0, 3)
	if s.AirQualityPM25 > PM25HighThreshold {
		out = append(out, InsightAirHigh)
	} else {
		out = append(out, InsightAirGood)
	}
	if s.SoilMoisture < SoilMoistureLowLimit {
		out = append(out, InsightSoilLow)
	} else {
		out = append(out, InsightSoilStable)
	}
	if s.PollutionIndex > PollutionHighThreshold {
		out = append(out, InsightPollutionHigh)
	} else {
		out = append(out, InsightPollutionSafe)
	}
	return out
}
