package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyWorkDays  = errors.New("at least one work day is required")
	ErrInvalidWeekday = errors.New("invalid weekday")
)

// WeekdayNames is the canonical weekday vocabulary, indexed like
// time.Weekday (Sunday = 0).
var WeekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// WeekdayOf derives the weekday name of a calendar date in UTC, so the
// result never depends on the host's local zone.
func WeekdayOf(date time.Time) string {
	return WeekdayNames[date.UTC().Weekday()]
}

// ValidateWorkDays checks a proposed work-day set against the canonical
// vocabulary and returns the set with duplicates removed, preserving the
// caller's order.
func ValidateWorkDays(days []string) ([]string, error) {
	if len(days) == 0 {
		return nil, ErrEmptyWorkDays
	}
	valid := make(map[string]struct{}, len(WeekdayNames))
	for _, name := range WeekdayNames {
		valid[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		if _, ok := valid[d]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, d)
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out, nil
}
