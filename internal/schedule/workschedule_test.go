package schedule

import (
	"errors"
	"testing"

	"github.com/agendly/agendly/internal/model"
)

func mustTime(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	v, err := model.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestGenerateOfferedThirtyMinuteService(t *testing.T) {
	grid := NewGridSet(Grid(5))
	offered, skipped, err := GenerateOffered(mustTime(t, "09:00"), mustTime(t, "11:00"), 30, grid)
	if err != nil {
		t.Fatalf("GenerateOffered failed: %v", err)
	}
	want := []string{"09:00:00", "09:30:00", "10:00:00", "10:30:00", "11:00:00"}
	if len(offered) != len(want) {
		t.Fatalf("expected %d ticks, got %d (%v)", len(want), len(offered), offered)
	}
	for i, w := range want {
		if offered[i].String() != w {
			t.Fatalf("tick %d: got %s, want %s", i, offered[i], w)
		}
	}
	if skipped != 0 {
		t.Fatalf("expected no skipped steps, got %d", skipped)
	}
}

func TestGenerateOfferedSkipsOffGridSteps(t *testing.T) {
	// A 7-minute duration drifts off a 5-minute grid after the first step.
	grid := NewGridSet(Grid(5))
	offered, skipped, err := GenerateOffered(mustTime(t, "09:00"), mustTime(t, "09:30"), 7, grid)
	if err != nil {
		t.Fatalf("GenerateOffered failed: %v", err)
	}
	// 09:00 lands; 09:07, 09:14, 09:21, 09:28 do not.
	if len(offered) != 1 || offered[0].String() != "09:00:00" {
		t.Fatalf("expected only 09:00:00, got %v", offered)
	}
	if skipped != 4 {
		t.Fatalf("expected 4 skipped steps, got %d", skipped)
	}
}

func TestGenerateOfferedNothingLands(t *testing.T) {
	grid := NewGridSet(Grid(30))
	_, skipped, err := GenerateOffered(mustTime(t, "09:05"), mustTime(t, "09:55"), 10, grid)
	if !errors.Is(err, ErrNoSlotsGenerated) {
		t.Fatalf("expected ErrNoSlotsGenerated, got %v", err)
	}
	if skipped == 0 {
		t.Fatal("expected skipped steps to be counted")
	}
}

func TestGenerateOfferedCrossesMidnight(t *testing.T) {
	grid := NewGridSet(Grid(5))
	offered, _, err := GenerateOffered(mustTime(t, "23:00"), mustTime(t, "01:00"), 30, grid)
	if err != nil {
		t.Fatalf("GenerateOffered failed: %v", err)
	}
	want := []string{"23:00:00", "23:30:00", "00:00:00", "00:30:00", "01:00:00"}
	if len(offered) != len(want) {
		t.Fatalf("expected %d ticks, got %v", len(want), offered)
	}
	for i, w := range want {
		if offered[i].String() != w {
			t.Fatalf("tick %d: got %s, want %s", i, offered[i], w)
		}
	}
}

func TestGenerateOfferedEqualStartEndIsFullDay(t *testing.T) {
	// end == start is treated as a range crossing midnight back to itself.
	grid := NewGridSet(Grid(5))
	offered, _, err := GenerateOffered(mustTime(t, "09:00"), mustTime(t, "09:00"), 60, grid)
	if err != nil {
		t.Fatalf("GenerateOffered failed: %v", err)
	}
	if len(offered) != 24 {
		t.Fatalf("expected 24 hourly ticks, got %d", len(offered))
	}
}

func TestGenerateOfferedRejectsBadDuration(t *testing.T) {
	grid := NewGridSet(Grid(5))
	if _, _, err := GenerateOffered(mustTime(t, "09:00"), mustTime(t, "11:00"), 0, grid); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestValidateWorkDays(t *testing.T) {
	days, err := ValidateWorkDays([]string{"Monday", "Wednesday", "Monday"})
	if err != nil {
		t.Fatalf("ValidateWorkDays failed: %v", err)
	}
	if len(days) != 2 || days[0] != "Monday" || days[1] != "Wednesday" {
		t.Fatalf("expected deduplicated [Monday Wednesday], got %v", days)
	}

	if _, err := ValidateWorkDays(nil); !errors.Is(err, ErrEmptyWorkDays) {
		t.Fatalf("expected ErrEmptyWorkDays, got %v", err)
	}
	if _, err := ValidateWorkDays([]string{"Monday", "Funday"}); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
	if _, err := ValidateWorkDays([]string{"monday"}); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("weekday names are case sensitive; expected ErrInvalidWeekday, got %v", err)
	}
}

func TestWeekdayOfUsesUTC(t *testing.T) {
	// 2026-01-26 is a Monday.
	date, err := model.ParseDate("2026-01-26")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if got := WeekdayOf(date); got != "Monday" {
		t.Fatalf("expected Monday, got %s", got)
	}
}
