// Package chart turns filtered readings into chart documents for the
// dashboard page. Line, area, and bar charts become complete ECharts option
// documents; heatmaps become a plain value grid the page renders itself.
package chart

import (
	"fmt"
	"sort"

	"github.com/verdantlab/envsim-dashboard/internal/domain"
)

// Type identifies a selectable chart style.
type Type string

const (
	TypeLine    Type = "line"
	TypeArea    Type = "area"
	TypeBar     Type = "bar"
	TypeHeatmap Type = "heatmap"
)

// Types lists the selectable chart types in display order.
func Types() []Type {
	return []Type{TypeLine, TypeArea, TypeBar, TypeHeatmap}
}

// ParseType validates a chart type value.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeLine, TypeArea, TypeBar, TypeHeatmap:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown chart type %q", s)
	}
}

// Label returns the display name of the chart type.
func (t Type) Label() string {
	switch t {
	case TypeLine:
		return "Line"
	case TypeArea:
		return "Area"
	case TypeBar:
		return "Bar"
	case TypeHeatmap:
		return "Heatmap"
	default:
		return string(t)
	}
}

// Option is one ECharts option document, ready to marshal.
type Option map[string]any

// Chart is the rendered chart for one metric. Exactly one of Option and
// Grid is set: heatmaps carry a grid, every other type a full ECharts
// option document.
type Chart struct {
	Metric domain.Metric `json:"metric"`
	Title  string        `json:"title"`
	Option Option        `json:"option,omitempty"`
	Grid   *Grid         `json:"grid,omitempty"`
}

// Build renders one chart for the given metric from already filtered
// readings. Empty input degrades to a chart with no series or an empty grid,
// never an error.
func Build(t Type, metric domain.Metric, readings []domain.Reading) Chart {
	spec := metric.Spec()
	c := Chart{Metric: metric, Title: spec.Label}

	if t == TypeHeatmap {
		g := BuildGrid(metric, readings)
		c.Grid = &g
		return c
	}

	dates, rows := pivot(metric, readings)
	names := make([]string, 0, len(rows))
	series := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.region)
		series = append(series, seriesFor(t, row))
	}

	c.Option = Option{
		"title":   map[string]any{"text": spec.Label, "left": "center"},
		"tooltip": map[string]any{"trigger": "axis"},
		"legend":  map[string]any{"data": names, "bottom": 0},
		"grid":    map[string]any{"left": "3%", "right": "4%", "bottom": "12%", "containLabel": true},
		"xAxis": map[string]any{
			"type":      "category",
			"data":      dates,
			"axisLabel": map[string]any{"rotate": 45},
		},
		"yAxis":  map[string]any{"type": "value", "name": spec.Unit},
		"series": series,
	}
	return c
}

// seriesFor builds one ECharts series entry for a region row. Area charts
// stack like the upstream plotting library does; bar charts group side by
// side, which is the ECharts default for multiple bar series.
func seriesFor(t Type, row regionRow) map[string]any {
	s := map[string]any{
		"name": row.region,
		"data": row.values,
	}
	switch t {
	case TypeArea:
		s["type"] = "line"
		s["areaStyle"] = map[string]any{}
		s["stack"] = "total"
	case TypeBar:
		s["type"] = "bar"
	default:
		s["type"] = "line"
		s["showSymbol"] = true
	}
	return s
}

// regionRow is one region's value series over the pivot dates.
type regionRow struct {
	region string
	values []any
}

// pivot arranges readings into per-region rows over the distinct dates,
// ascending. Regions come out in alphabetical order to match the dashboard's
// region selector; a (date, region) pair with no reading yields null so
// series stay aligned with the date axis.
func pivot(metric domain.Metric, readings []domain.Reading) ([]string, []regionRow) {
	if len(readings) == 0 {
		return []string{}, nil
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

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	regions := make([]string, 0, len(values))
	for region := range values {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	rows := make([]regionRow, 0, len(regions))
	for _, region := range regions {
		row := regionRow{region: region, values: make([]any, len(dates))}
		for i, d := range dates {
			if v, ok := values[region][d]; ok {
				row.values[i] = v
			}
		}
		rows = append(rows, row)
	}
	return dates, rows
}
