package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Dataset timestamps and the selectable-year window both come from it.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now()
}

// YearOptions returns the selectable simulation years: two years either side
// of the current one, ascending.
func YearOptions() []int {
	cur := clock.Now().UTC().Year()
	years := make([]int, 0, 5)
	for y := cur - 2; y <= cur+2; y++ {
		years = append(years, y)
	}
	return years
}
