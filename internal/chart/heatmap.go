package chart

import (
	"sort"

	"github.com/verdantlab/envsim-dashboard/internal/domain"
)

// Grid is the heatmap's matrix form for one metric: one row per region in
// alphabetical order, one column per date ascending. Values[i][j] is the
// reading for Regions[i] on Dates[j]; Min and Max bound the color scale.
type Grid struct {
	Metric  domain.Metric `json:"metric"`
	Label   string        `json:"label"`
	Regions []string      `json:"regions"`
	Dates   []string      `json:"dates"`
	Values  [][]float64   `json:"values"`
	Min     float64       `json:"min"`
	Max     float64       `json:"max"`
}

// BuildGrid pivots readings into the heatmap matrix for one metric. Empty
// input yields an empty grid with zero bounds.
func BuildGrid(metric domain.Metric, readings []domain.Reading) Grid {
	g := Grid{
		Metric:  metric,
		Label:   metric.Spec().Label,
		Regions: []string{},
		Dates:   []string{},
		Values:  [][]float64{},
	}
	if len(readings) == 0 {
		return g
	}

	dateSet := make(map[string]struct{})
	values := make(map[string]map[string]float64)
	for _, r := range readings {
		d := r.Date.Format(domain.DateLayout)
		dateSet[d] = struct{}{}
		region := string(r.Region)
		if values[region] == nil {
			values[region] = make(map[string]float64)
		}
		values[region][d] = r.Value(metric)
	}

	for d := range dateSet {
		g.Dates = append(g.Dates, d)
	}
	sort.Strings(g.Dates)
	for region := range values {
		g.Regions = append(g.Regions, region)
	}
	sort.Strings(g.Regions)

	first := true
	for _, region := range g.Regions {
		row := make([]float64, len(g.Dates))
		for j, d := range g.Dates {
			v := values[region][d]
			row[j] = v
			if first || v < g.Min {
				g.Min = v
			}
			if first || v > g.Max {
				g.Max = v
			}
			first = false
		}
		g.Values = append(g.Values, row)
	}
	return g
}
