package schedule

import (
	"testing"

	"github.com/agendly/agendly/internal/model"
)

func TestGridFiveMinutes(t *testing.T) {
	ticks := Grid(5)
	if len(ticks) != 288 {
		t.Fatalf("expected 288 ticks, got %d", len(ticks))
	}
	if ticks[0] != 0 {
		t.Fatalf("expected first tick 00:00:00, got %s", ticks[0])
	}
	if last := ticks[len(ticks)-1]; last.String() != "23:55:00" {
		t.Fatalf("expected last tick 23:55:00, got %s", last)
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i]-ticks[i-1] != 5 {
			t.Fatalf("uneven step between %s and %s", ticks[i-1], ticks[i])
		}
	}
}

func TestGridNeverWraps(t *testing.T) {
	for _, res := range []int{1, 5, 7, 15, 30, 60} {
		for _, tick := range Grid(res) {
			if !tick.Valid() {
				t.Fatalf("resolution %d produced out-of-day tick %d", res, int(tick))
			}
		}
	}
}

func TestGridDefaultsOnBadResolution(t *testing.T) {
	if got := len(Grid(0)); got != 288 {
		t.Fatalf("expected default 5-minute grid, got %d ticks", got)
	}
	if got := len(Grid(-10)); got != 288 {
		t.Fatalf("expected default 5-minute grid, got %d ticks", got)
	}
}

func TestGridSetContains(t *testing.T) {
	set := NewGridSet(Grid(5))
	if !set.Contains(model.TimeOfDay(570)) {
		t.Fatal("expected 09:30:00 on the 5-minute grid")
	}
	if set.Contains(model.TimeOfDay(571)) {
		t.Fatal("09:31:00 must not be on the 5-minute grid")
	}
}
