package model

import "testing"

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want TimeOfDay
		ok   bool
	}{
		{"00:00", 0, true},
		{"00:00:00", 0, true},
		{"09:30", 570, true},
		{"09:30:00", 570, true},
		{"23:55:00", 1435, true},
		{" 10:15 ", 615, true},
		{"24:00", 0, false},
		{"09:60", 0, false},
		{"09:30:30", 0, false},
		{"0930", 0, false},
		{"", 0, false},
		{"aa:bb", 0, false},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		if c.ok && err != nil {
			t.Errorf("ParseTimeOfDay(%q) unexpected error: %v", c.in, err)
			continue
		}
		if !c.ok {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) expected error", c.in)
			}
			continue
		}
		if got != c.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	if s := TimeOfDay(570).String(); s != "09:30:00" {
		t.Fatalf("got %q, want 09:30:00", s)
	}
	if s := TimeOfDay(0).String(); s != "00:00:00" {
		t.Fatalf("got %q, want 00:00:00", s)
	}
	if s := TimeOfDay(1435).String(); s != "23:55:00" {
		t.Fatalf("got %q, want 23:55:00", s)
	}
}
