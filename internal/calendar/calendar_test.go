package calendar

import (
	"testing"
	"time"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestOffsetAndDate(t *testing.T) {
	c := New(monday.Add(15*time.Hour), nil)

	if !c.Anchor().Equal(monday) {
		t.Errorf("Anchor() = %v, want %v", c.Anchor(), monday)
	}
	if got := c.Date(5); !got.Equal(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date(5) = %v", got)
	}
	if got := c.Offset(time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)); got != 7 {
		t.Errorf("Offset() = %d, want 7", got)
	}
	if got := c.Offset(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)); got != -2 {
		t.Errorf("Offset() before anchor = %d, want -2", got)
	}
}

func TestWorkingDays(t *testing.T) {
	holiday := monday.AddDate(0, 0, 9) // Wednesday of week two
	c := New(monday, []time.Time{holiday})

	tests := []struct {
		name   string
		offset int
		want   bool
	}{
		{"monday", 0, true},
		{"friday", 4, true},
		{"saturday", 5, false},
		{"sunday", 6, false},
		{"holiday", 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsWorkingDay(tt.offset); got != tt.want {
				t.Errorf("IsWorkingDay(%d) = %v, want %v", tt.offset, got, tt.want)
			}
		})
	}

	if got := c.NextWorkingDay(5); got != 7 {
		t.Errorf("NextWorkingDay(sat) = %d, want 7", got)
	}
	if got := c.NextWorkingDay(2); got != 2 {
		t.Errorf("NextWorkingDay(wed) = %d, want 2", got)
	}
}

func TestAddWorkingDays(t *testing.T) {
	c := New(monday, []time.Time{monday.AddDate(0, 0, 9)})

	tests := []struct {
		name  string
		start int
		n     int
		want  int
	}{
		{"within week", 0, 5, 5},
		{"spans weekend", 3, 3, 8},
		{"spans weekend and holiday", 3, 5, 11},
		{"milestone", 4, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.AddWorkingDays(tt.start, tt.n); got != tt.want {
				t.Errorf("AddWorkingDays(%d, %d) = %d, want %d", tt.start, tt.n, got, tt.want)
			}
			if tt.n > 0 {
				if got := c.WorkingDaysBetween(tt.start, tt.want); got != tt.n {
					t.Errorf("WorkingDaysBetween(%d, %d) = %d, want %d", tt.start, tt.want, got, tt.n)
				}
			}
		})
	}
}

func TestSubtractWorkingDays(t *testing.T) {
	c := New(monday, nil)

	// Finish on the following Tuesday (exclusive) after 3 working days: Thu, Fri, Mon.
	if got := c.SubtractWorkingDays(8, 3); got != 3 {
		t.Errorf("SubtractWorkingDays(8, 3) = %d, want 3", got)
	}
	if got := c.SubtractWorkingDays(8, 0); got != 8 {
		t.Errorf("SubtractWorkingDays(8, 0) = %d, want 8", got)
	}
}

func TestParseScale(t *testing.T) {
	for in, want := range map[string]Scale{"": ScaleWeek, "Day": ScaleDay, "month": ScaleMonth, "week": ScaleWeek} {
		got, err := ParseScale(in)
		if err != nil || got != want {
			t.Errorf("ParseScale(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseScale("year"); err == nil {
		t.Error("ParseScale(year) should fail")
	}
}

func TestFloorCeil(t *testing.T) {
	thursday := monday.AddDate(0, 0, 3)

	tests := []struct {
		name      string
		t         time.Time
		scale     Scale
		wantFloor time.Time
		wantCeil  time.Time
	}{
		{"day", thursday, ScaleDay, thursday, thursday},
		{"week", thursday, ScaleWeek, monday, monday.AddDate(0, 0, 7)},
		{"week boundary", monday, ScaleWeek, monday, monday},
		{"sunday", monday.AddDate(0, 0, 6), ScaleWeek, monday, monday.AddDate(0, 0, 7)},
		{"month", thursday, ScaleMonth, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Floor(tt.t, tt.scale); !got.Equal(tt.wantFloor) {
				t.Errorf("Floor() = %v, want %v", got, tt.wantFloor)
			}
			if got := Ceil(tt.t, tt.scale); !got.Equal(tt.wantCeil) {
				t.Errorf("Ceil() = %v, want %v", got, tt.wantCeil)
			}
		})
	}
}
