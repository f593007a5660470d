package schedule

import (
	"errors"

	"github.com/agendly/agendly/internal/model"
)

var (
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrNoSlotsGenerated = errors.New("no offered times landed on the grid")
)

// GenerateOffered produces the ticks a service offers by stepping from
// start to end inclusive in durationMinutes increments. An end at or
// before the start means the range crosses midnight and continues into
// the next day; steps past midnight wrap back onto the day grid. Steps
// that miss a grid tick are dropped and counted in skipped rather than
// treated as errors. Duplicate ticks (possible on wrapped ranges) are
// emitted once.
func GenerateOffered(start, end model.TimeOfDay, durationMinutes int, grid GridSet) (offered []model.TimeOfDay, skipped int, err error) {
	if durationMinutes <= 0 {
		return nil, 0, ErrInvalidDuration
	}
	if !start.Valid() || !end.Valid() {
		return nil, 0, model.ErrInvalidTimeOfDay
	}

	endMinute := int(end)
	if endMinute <= int(start) {
		endMinute += model.MinutesPerDay
	}

	seen := make(map[model.TimeOfDay]struct{})
	for m := int(start); m <= endMinute; m += durationMinutes {
		tick := model.TimeOfDay(m % model.MinutesPerDay)
		if !grid.Contains(tick) {
			skipped++
			continue
		}
		if _, dup := seen[tick]; dup {
			continue
		}
		seen[tick] = struct{}{}
		offered = append(offered, tick)
	}

	if len(offered) == 0 {
		return nil, skipped, ErrNoSlotsGenerated
	}
	return offered, skipped, nil
}
