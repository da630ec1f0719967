package core

import (
	"fmt"
	"time"
)

// Day is a calendar date with no time component, the key a spend entry is
// bucketed under once the configured day start is applied.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDay builds a Day from its parts.
func NewDay(year int, month time.Month, day int) Day {
	return Day{Year: year, Month: month, Day: day}
}

// DayOf truncates a timestamp to its local calendar date.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// Time returns the start of the day in the given location.
func (d Day) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the day shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// RitualDayOf maps a timestamp to the ritual day it belongs to under the
// given day start. Timestamps before the configured boundary belong to the
// previous calendar day; a timestamp exactly at the boundary minute opens the
// new ritual day.
//
// Local wall-clock hour and minute are used as-is. Around DST transitions
// this makes a ritual day shorter or longer by the shift; that matches how
// users experience the boundary and is intentional.
func RitualDayOf(t time.Time, cfg DayStartConfig) Day {
	timeInMinutes := t.Hour()*60 + t.Minute()
	if timeInMinutes < cfg.ThresholdMinutes() {
		return DayOf(t.AddDate(0, 0, -1))
	}
	return DayOf(t)
}

// StartOfWeek truncates a timestamp to the beginning of its calendar week.
// The week boundary follows weekStart (the locale's first day of week) and is
// not ritual-day-adjusted: weekly figures deliberately use plain calendar
// containment on raw timestamps.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	back := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return midnight.AddDate(0, 0, -back)
}
