// Package calendar provides the date-bucketed index over scheduled items.
package calendar

import (
	"fmt"
	"time"
)

// Day is a calendar date at day granularity. It carries no location; the
// owning Index decides which location timestamps are bucketed in.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

const dayLayout = "2006-01-02"

// DayOf returns the calendar date of t in the given location.
func DayOf(t time.Time, loc *time.Location) Day {
	local := t.In(loc)

	return Day{Year: local.Year(), Month: local.Month(), Dom: local.Day()}
}

// ParseDay parses a date in "2006-01-02" form.
func ParseDay(raw string) (Day, error) {
	t, err := time.Parse(dayLayout, raw)
	if err != nil {
		return Day{}, fmt.Errorf("invalid calendar date %q: %w", raw, err)
	}

	return Day{Year: t.Year(), Month: t.Month(), Dom: t.Day()}, nil
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Dom)
}

func (d Day) IsZero() bool {
	return d == Day{}
}

// At combines the day with the clock time (hour, minute, second, nanosecond)
// of clock as observed in loc. This is how a drag preserves an item's
// time-of-day while replacing its date.
func (d Day) At(clock time.Time, loc *time.Location) time.Time {
	local := clock.In(loc)
	hour, minute, sec := local.Clock()

	return time.Date(d.Year, d.Month, d.Dom, hour, minute, sec, local.Nanosecond(), loc)
}

// Start returns midnight of the day in loc.
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, loc)
}

// Next returns the following calendar day.
func (d Day) Next(loc *time.Location) Day {
	return DayOf(d.Start(loc).AddDate(0, 0, 1), loc)
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}

	if d.Month != other.Month {
		return d.Month < other.Month
	}

	return d.Dom < other.Dom
}
