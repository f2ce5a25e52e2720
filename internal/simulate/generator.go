// Package simulate produces the synthetic reading datasets the dashboard
// serves. Every value comes from a damped, clamped random walk; see the
// domain package doc for the model.
package simulate

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/verdantlab/envsim-dashboard/internal/domain"
)

// Generator draws datasets from a single seeded random stream. Successive
// Generate calls consume the stream, so a fixed seed makes the sequence of
// datasets reproducible, not each individual call. Not safe for concurrent
// use; the dashboard service serializes access.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator seeded with seed. Seed 0 seeds from the current
// clock instead, giving fresh data on every run.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = domain.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate builds a dataset of consecutive daily readings starting January 1
// of year: one reading per region per day, region-major, dates ascending
// within each region. days <= 0 yields a dataset with no readings.
func (g *Generator) Generate(year, days int) domain.Dataset {
	ds := domain.Dataset{
		ID:          uuid.New(),
		Year:        year,
		Days:        days,
		GeneratedAt: domain.Now().UTC(),
		Readings:    []domain.Reading{},
	}
	if days <= 0 {
		return ds
	}

	start := domain.StartOfYear(year)
	readings := make([]domain.Reading, 0, len(domain.Regions())*days)
	for _, region := range domain.Regions() {
		// Draw order is fixed: one full walk per metric, metrics in
		// display order. Reordering would change seeded output.
		air := g.walk(domain.MetricAirQualityPM25.Spec(), days)
		soil := g.walk(domain.MetricSoilMoisture.Spec(), days)
		pollution := g.walk(domain.MetricPollutionIndex.Spec(), days)

		for i := 0; i < days; i++ {
			readings = append(readings, domain.Reading{
				Date:           start.AddDate(0, 0, i),
				Region:         region,
				AirQualityPM25: air[i],
				SoilMoisture:   soil[i],
				PollutionIndex: pollution[i],
			})
		}
	}
	ds.Readings = readings
	return ds
}

// walk draws one damped random walk of length days, clamping every value
// into the metric's [Min, Max] range.
func (g *Generator) walk(spec domain.MetricSpec, days int) []float64 {
	out := make([]float64, days)
	var sum float64
	for i := range out {
		sum += g.rng.NormFloat64()*spec.StdDev + spec.Mean
		v := sum / spec.Damping
		if v < spec.Min {
			v = spec.Min
		} else if v > spec.Max {
			v = spec.Max
		}
		out[i] = v
	}
	return out
}
