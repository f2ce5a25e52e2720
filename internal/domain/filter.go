package domain

import (
	"strings"
	"time"
)

// RegionFilter selects either every region or exactly one. The zero value
// selects every region.
type RegionFilter struct {
	region Region
	one    bool
}

// AllRegions returns a filter matching every region.
func AllRegions() RegionFilter {
	return RegionFilter{}
}

// OneRegion returns a filter matching only r.
func OneRegion(r Region) RegionFilter {
	return RegionFilter{region: r, one: true}
}

// Matches reports whether r passes the filter.
func (f RegionFilter) Matches(r Region) bool {
	return !f.one || f.region == r
}

// All reports whether the filter selects every region.
func (f RegionFilter) All() bool {
	return !f.one
}

func (f RegionFilter) String() string {
	if !f.one {
		return "All"
	}
	return string(f.region)
}

// ParseRegionFilter interprets a region query parameter. The literal "All"
// (case-insensitive) and the empty string select every region; anything else
// must be a valid region label. "All" is a presentation value, never a
// Region: past this boundary only the tagged filter exists.
func ParseRegionFilter(s string) (RegionFilter, error) {
	if s == "" || strings.EqualFold(s, "All") {
		return AllRegions(), nil
	}
	r, err := ParseRegion(s)
	if err != nil {
		return RegionFilter{}, err
	}
	return OneRegion(r), nil
}

// Window is an inclusive calendar-day range.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from two dates, truncating both to midnight UTC.
// A window whose start falls after its end contains no days, so filtering
// with it yields zero rows rather than an error.
func NewWindow(start, end time.Time) Window {
	return Window{Start: DateOnly(start), End: DateOnly(end)}
}

// Contains reports whether day d falls inside the window, inclusive on both
// ends.
func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Filter returns the readings whose date falls inside the window and whose
// region passes the filter, preserving input order. Filtering never mutates
// the input and is idempotent: filtering a result with the same arguments
// returns an equal slice. An empty result is an empty, non-nil slice.
func Filter(readings []Reading, w Window, rf RegionFilter) []Reading {
	out := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if !w.Contains(r.Date) {
			continue
		}
		if !rf.Matches(r.Region) {
			continue
		}
		out = append(out, r)
	}
	return out
}
