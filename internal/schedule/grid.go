// Package schedule holds the pure scheduling vocabulary: the canonical
// day grid of ticks, the weekday name set, and work-schedule generation.
package schedule

import (
	"github.com/agendly/agendly/internal/model"
)

// DefaultResolutionMinutes is the grid step used when none is configured.
const DefaultResolutionMinutes = 5

// Grid returns the full day grid at the given resolution: 00:00:00
// inclusive, stepping resolutionMinutes, never wrapping past midnight
// (a 5-minute grid ends at 23:55:00). A non-positive resolution falls
// back to the default.
func Grid(resolutionMinutes int) []model.TimeOfDay {
	if resolutionMinutes <= 0 {
		resolutionMinutes = DefaultResolutionMinutes
	}
	ticks := make([]model.TimeOfDay, 0, model.MinutesPerDay/resolutionMinutes+1)
	for m := 0; m < model.MinutesPerDay; m += resolutionMinutes {
		ticks = append(ticks, model.TimeOfDay(m))
	}
	return ticks
}

// GridSet is a membership view of the grid, loaded once at startup and
// shared read-only by every request.
type GridSet map[model.TimeOfDay]struct{}

func NewGridSet(ticks []model.TimeOfDay) GridSet {
	set := make(GridSet, len(ticks))
	for _, t := range ticks {
		set[t] = struct{}{}
	}
	return set
}

func (g GridSet) Contains(t model.TimeOfDay) bool {
	_, ok := g[t]
	return ok
}
