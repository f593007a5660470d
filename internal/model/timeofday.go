package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a clock time expressed as whole minutes since midnight.
// It is the unit every schedule tick, offered time and booking time is
// stored in; the wire format is "HH:MM:SS".
type TimeOfDay int

const MinutesPerDay = 24 * 60

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS"; seconds, when present,
// must be zero since the grid has minute resolution.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, ErrInvalidTimeOfDay
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, ErrInvalidTimeOfDay
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, ErrInvalidTimeOfDay
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds != 0 {
			return 0, ErrInvalidTimeOfDay
		}
	}
	return TimeOfDay(hours*60 + minutes), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:00", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < MinutesPerDay
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return ErrInvalidTimeOfDay
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
