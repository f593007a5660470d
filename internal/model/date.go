package model

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a calendar date ("YYYY-MM-DD") at midnight UTC, so
// weekday derivation never shifts with the host zone.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

func FormatDate(d time.Time) string {
	return d.UTC().Format(dateLayout)
}
