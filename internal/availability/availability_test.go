package availability

import (
	"testing"

	"github.com/agendly/agendly/internal/model"
)

func ticks(t *testing.T, times ...string) []model.TimeOfDay {
	t.Helper()
	out := make([]model.TimeOfDay, 0, len(times))
	for _, s := range times {
		v, err := model.ParseTimeOfDay(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		out = append(out, v)
	}
	return out
}

func TestFreeNoBookings(t *testing.T) {
	offered := ticks(t, "09:00", "09:30", "10:00", "10:30", "11:00")
	free := Free(offered, nil)
	if len(free) != 5 {
		t.Fatalf("expected all 5 ticks free, got %v", free)
	}
	for i, want := range offered {
		if free[i] != want {
			t.Fatalf("order changed at %d: got %s, want %s", i, free[i], want)
		}
	}
}

func TestFreeExcludesBooked(t *testing.T) {
	offered := ticks(t, "09:00", "09:30", "10:00", "10:30", "11:00")
	booked := ticks(t, "09:30")
	free := Free(offered, booked)
	want := []string{"09:00:00", "10:00:00", "10:30:00", "11:00:00"}
	if len(free) != len(want) {
		t.Fatalf("expected %d free ticks, got %v", len(want), free)
	}
	for i, w := range want {
		if free[i].String() != w {
			t.Fatalf("tick %d: got %s, want %s", i, free[i], w)
		}
	}
}

func TestFreeFullyBooked(t *testing.T) {
	offered := ticks(t, "09:00", "10:00")
	if free := Free(offered, offered); len(free) != 0 {
		t.Fatalf("expected no free ticks, got %v", free)
	}
}

func TestFreeSortsUnorderedOffered(t *testing.T) {
	// Offered sets generated across midnight are stored out of stepping
	// order; the reader still returns ascending times.
	offered := ticks(t, "23:00", "23:30", "00:00", "00:30")
	free := Free(offered, nil)
	want := []string{"00:00:00", "00:30:00", "23:00:00", "23:30:00"}
	for i, w := range want {
		if free[i].String() != w {
			t.Fatalf("tick %d: got %s, want %s", i, free[i], w)
		}
	}
}

func TestFreeIsIdempotent(t *testing.T) {
	offered := ticks(t, "09:00", "09:30", "10:00")
	booked := ticks(t, "10:00")
	first := Free(offered, booked)
	second := Free(offered, booked)
	if len(first) != len(second) {
		t.Fatalf("repeated calls disagree: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated calls disagree at %d: %v vs %v", i, first, second)
		}
	}
}
