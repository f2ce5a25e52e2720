// Package domain models the synthetic environmental readings the dashboard
// serves: daily air quality, soil moisture, and pollution values for four
// fixed monitoring regions.
//
// # Simulation Model
//
// All data is generated, never measured. Each (region, metric) pair gets an
// independent damped random walk over consecutive calendar days starting at
// January 1 of the chosen year:
//
//	value[i] = clamp(cumsum(step[0..i]) / damping, min, max)
//
// where each step is drawn from a normal distribution. The per-metric
// parameters live in [MetricSpec]:
//
//	PM2.5:     steps N(50, 10), damping 5, clamped to [10, 150] µg/m³
//	Soil:      steps N(30, 5),  damping 3, clamped to [10, 80] %
//	Pollution: steps N(40, 8),  damping 4, clamped to [5, 120] (unitless index)
//
// With positive step means the damped cumulative sum trends upward until the
// clamp ceiling absorbs it, so long series flatten near their maxima. That is
// accepted behavior, not a defect.
//
// # Determinism
//
// A generator draws from a single seeded random stream in a fixed order:
// regions in [Regions] order, metrics in [Metrics] order within each region,
// one full days-length block per metric. Same seed, same parameters, same
// dataset. Dates are calendar days at midnight UTC; leap years follow the
// Gregorian calendar via time.AddDate.
//
// # Queries
//
// Readings are filtered by an inclusive date [Window] and a [RegionFilter]
// ("All" regions or exactly one). Summaries are plain arithmetic means over
// whatever the filter kept; an empty selection yields NaN means and no
// insights. Insight rules compare period means against fixed thresholds
// (PM2.5 > 80, soil moisture < 25, pollution > 70) and always produce one
// line per metric, in metric order.
package domain
