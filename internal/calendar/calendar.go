// Package calendar maps day offsets to dates and does working-day arithmetic.
//
// Day offsets count calendar days from a project anchor (offset 0). Windows
// are half-open: a task occupying [start, finish) works on start and stops
// before finish. Weekends are Saturday and Sunday.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Calendar converts between offsets and dates for one project.
type Calendar struct {
	anchor   time.Time
	holidays map[int]struct{}
}

// New returns a calendar anchored at the given date. Times are truncated to
// UTC midnight; holidays before the anchor are accepted and simply never hit.
func New(anchor time.Time, holidays []time.Time) *Calendar {
	c := &Calendar{
		anchor:   Truncate(anchor),
		holidays: make(map[int]struct{}, len(holidays)),
	}
	for _, h := range holidays {
		c.holidays[c.Offset(h)] = struct{}{}
	}
	return c
}

// Truncate returns midnight UTC of t's calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Anchor returns the date of offset 0.
func (c *Calendar) Anchor() time.Time {
	return c.anchor
}

// Date returns the date at offset.
func (c *Calendar) Date(offset int) time.Time {
	return c.anchor.AddDate(0, 0, offset)
}

// Offset returns the number of days from the anchor to t's calendar date.
func (c *Calendar) Offset(t time.Time) int {
	return int(Truncate(t).Sub(c.anchor) / day)
}

// IsWeekend reports whether offset falls on a Saturday or Sunday.
func (c *Calendar) IsWeekend(offset int) bool {
	wd := c.Date(offset).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday reports whether offset is a configured holiday.
func (c *Calendar) IsHoliday(offset int) bool {
	_, ok := c.holidays[offset]
	return ok
}

// IsWorkingDay reports whether offset is neither a weekend nor a holiday.
func (c *Calendar) IsWorkingDay(offset int) bool {
	return !c.IsWeekend(offset) && !c.IsHoliday(offset)
}

// NextWorkingDay returns offset if it is a working day, otherwise the first
// working day after it.
func (c *Calendar) NextWorkingDay(offset int) int {
	for !c.IsWorkingDay(offset) {
		offset++
	}
	return offset
}

// AddWorkingDays returns the exclusive finish of a task that starts at start
// and needs n working days. Non-working days inside the window are skipped.
// A zero-length task finishes where it starts.
func (c *Calendar) AddWorkingDays(start, n int) int {
	d := start
	for worked := 0; worked < n; d++ {
		if c.IsWorkingDay(d) {
			worked++
		}
	}
	return d
}

// SubtractWorkingDays returns the latest start from which n working days end
// by the exclusive finish.
func (c *Calendar) SubtractWorkingDays(finish, n int) int {
	d := finish
	for worked := 0; worked < n; {
		d--
		if c.IsWorkingDay(d) {
			worked++
		}
	}
	return d
}

// WorkingDaysBetween counts working days in [from, to).
func (c *Calendar) WorkingDaysBetween(from, to int) int {
	n := 0
	for d := from; d < to; d++ {
		if c.IsWorkingDay(d) {
			n++
		}
	}
	return n
}

// Scale is the unit of a timeline view.
type Scale string

const (
	ScaleDay   Scale = "day"
	ScaleWeek  Scale = "week"
	ScaleMonth Scale = "month"
)

// ParseScale parses a scale name. An empty string is ScaleWeek.
func ParseScale(s string) (Scale, error) {
	switch Scale(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScaleWeek:
		return ScaleWeek, nil
	case ScaleDay:
		return ScaleDay, nil
	case ScaleMonth:
		return ScaleMonth, nil
	default:
		return "", fmt.Errorf("unknown scale %q", s)
	}
}

// Floor returns the start of the scale unit containing t. Weeks start on Monday.
func Floor(t time.Time, s Scale) time.Time {
	t = Truncate(t)
	switch s {
	case ScaleWeek:
		back := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -back)
	case ScaleMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// Ceil returns the exclusive end of the scale unit containing t, or t itself
// when t already sits on a unit boundary.
func Ceil(t time.Time, s Scale) time.Time {
	t = Truncate(t)
	f := Floor(t, s)
	if f.Equal(t) {
		return t
	}
	switch s {
	case ScaleWeek:
		return f.AddDate(0, 0, 7)
	case ScaleMonth:
		return f.AddDate(0, 1, 0)
	default:
		return t
	}
}
