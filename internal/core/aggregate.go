package core

import (
	"sort"
	"time"
)

// DefaultRollingWindowDays is the window used for the "vs average" narrative.
const DefaultRollingWindowDays = 30

// Band thresholds: today counts as above/below average only when it leaves a
// fixed 10% corridor around the rolling average.
const (
	bandUpperNum = 11 // average * 1.1
	bandLowerNum = 9  // average * 0.9
	bandDenom    = 10
)

// TrendBand classifies today's spending against the rolling average.
type TrendBand string

const (
	Above   TrendBand = "above"
	Below   TrendBand = "below"
	OnTrack TrendBand = "on_track"
)

// WeekSummary holds the current calendar week's figures.
type WeekSummary struct {
	Total Money
	// DailyAverage is always Total/7, regardless of how many days of the
	// week actually have entries.
	DailyAverage Money
}

// WeekdayTotal is the peak day of the current week.
type WeekdayTotal struct {
	Weekday time.Weekday
	Total   Money
}

// DailyTotal sums the entries that share now's ritual day. Empty input
// yields zero.
func DailyTotal(entries []SpendEntry, now time.Time, cfg DayStartConfig) Money {
	return TotalForRitualDay(entries, RitualDayOf(now, cfg), cfg)
}

// TotalForRitualDay sums the entries bucketed under the given ritual day.
func TotalForRitualDay(entries []SpendEntry, day Day, cfg DayStartConfig) Money {
	var cents int64
	for _, e := range entries {
		if RitualDayOf(e.Timestamp, cfg) == day {
			cents += e.Amount.Cents
		}
	}
	return Money{Cents: cents}
}

// GroupByRitualDay partitions entries by their ritual day. Key order carries
// no meaning; callers sort descending for display.
func GroupByRitualDay(entries []SpendEntry, cfg DayStartConfig) map[Day][]SpendEntry {
	groups := make(map[Day][]SpendEntry)
	for _, e := range entries {
		day := RitualDayOf(e.Timestamp, cfg)
		groups[day] = append(groups[day], e)
	}
	return groups
}

// RitualDaysDescending returns the distinct ritual days present in entries,
// most recent first.
func RitualDaysDescending(entries []SpendEntry, cfg DayStartConfig) []Day {
	groups := GroupByRitualDay(entries, cfg)
	days := make([]Day, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[j].Before(days[i]) })
	return days
}

// RollingAverage computes the mean per-day total over the most recent
// windowDays distinct ritual days that contain at least one entry. The mean
// divides by the count of active days present, not by the window size: a
// sparse logger's average reflects the days they actually spent. Returns
// zero when no entries exist.
func RollingAverage(entries []SpendEntry, cfg DayStartConfig, windowDays int) Money {
	days := RitualDaysDescending(entries, cfg)
	if len(days) == 0 {
		return Money{}
	}
	if windowDays > 0 && len(days) > windowDays {
		days = days[:windowDays]
	}
	var sum int64
	for _, day := range days {
		sum += TotalForRitualDay(entries, day, cfg).Cents
	}
	return Money{Cents: divideRounded(sum, int64(len(days)))}
}

// WeeklyTotal sums the entries whose raw timestamp falls inside now's
// calendar week, [startOfWeek, startOfWeek+7d). Week containment is on raw
// timestamps, not ritual days: an entry logged at 01:00 with a 6 AM day
// start counts toward the calendar week of its wall-clock date. The daily
// average divides by a constant 7.
func WeeklyTotal(entries []SpendEntry, now time.Time, weekStart time.Weekday) WeekSummary {
	start := StartOfWeek(now, weekStart)
	end := start.AddDate(0, 0, 7)
	var cents int64
	for _, e := range entries {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			cents += e.Amount.Cents
		}
	}
	return WeekSummary{
		Total:        Money{Cents: cents},
		DailyAverage: Money{Cents: divideRounded(cents, 7)},
	}
}

// PeakWeekday finds the weekday of the current calendar week with the
// highest summed spend, grouping by the raw timestamp's weekday component.
// Ties resolve to the earliest weekday index, counted from weekStart, so the
// result is stable. Returns ok=false when the week has no entries.
func PeakWeekday(entries []SpendEntry, now time.Time, weekStart time.Weekday) (WeekdayTotal, bool) {
	start := StartOfWeek(now, weekStart)
	end := start.AddDate(0, 0, 7)

	var totals [7]int64
	var any bool
	for _, e := range entries {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			totals[int(e.Timestamp.Weekday())] += e.Amount.Cents
			any = true
		}
	}
	if !any {
		return WeekdayTotal{}, false
	}

	best := -1
	for offset := 0; offset < 7; offset++ {
		wd := (int(weekStart) + offset) % 7
		if best == -1 || totals[wd] > totals[best] {
			best = wd
		}
	}
	return WeekdayTotal{Weekday: time.Weekday(best), Total: Money{Cents: totals[best]}}, true
}

// CompareToAverage bands today's total against the rolling average: above
// when strictly over average*1.1, below when strictly under average*0.9,
// on track otherwise. Integer arithmetic keeps the boundaries exact.
func CompareToAverage(dailyTotal, average Money) TrendBand {
	switch {
	case dailyTotal.Cents*bandDenom > average.Cents*bandUpperNum:
		return Above
	case dailyTotal.Cents*bandDenom < average.Cents*bandLowerNum:
		return Below
	default:
		return OnTrack
	}
}

// divideRounded divides cents half-up, keeping totals stable for display.
func divideRounded(cents, by int64) int64 {
	if by == 0 {
		return 0
	}
	if cents >= 0 {
		return (cents + by/2) / by
	}
	return -((-cents + by/2) / by)
}
