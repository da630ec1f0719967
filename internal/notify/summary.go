// Package notify renders the daily and weekly summary notifications. The
// worker consumes a summary trigger, feeds the ledger snapshot through the
// aggregation core and asks this package for the user-facing text.
package notify

import (
	"fmt"
	"time"

	"mochi/internal/amqp"
	"mochi/internal/core"
)

// Notification is a rendered push notification, ready for delivery.
type Notification struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Renderer turns ledger snapshots into summary notifications.
type Renderer struct {
	currencySymbol string
	weekStart      time.Weekday
	windowDays     int
}

func NewRenderer(currencySymbol string, weekStart time.Weekday, windowDays int) *Renderer {
	if windowDays <= 0 {
		windowDays = core.DefaultRollingWindowDays
	}
	return &Renderer{
		currencySymbol: currencySymbol,
		weekStart:      weekStart,
		windowDays:     windowDays,
	}
}

// Render routes a summary type to its builder.
func (r *Renderer) Render(summaryType string, entries []core.SpendEntry, now time.Time, cfg core.DayStartConfig) (Notification, error) {
	switch summaryType {
	case amqp.SummaryDaily:
		return r.Daily(entries, now, cfg), nil
	case amqp.SummaryWeekly:
		return r.Weekly(entries, now), nil
	default:
		return Notification{}, fmt.Errorf("unknown summary type: %s", summaryType)
	}
}

// Daily renders today's total against the rolling average, banded so small
// fluctuations read as "on track" instead of noise.
func (r *Renderer) Daily(entries []core.SpendEntry, now time.Time, cfg core.DayStartConfig) Notification {
	today := core.DailyTotal(entries, now, cfg)
	average := core.RollingAverage(entries, cfg, r.windowDays)

	n := Notification{
		Type:  amqp.SummaryDaily,
		Title: "Daily summary",
	}

	if today.Cents == 0 {
		n.Body = "No spending logged today."
		return n
	}

	switch core.CompareToAverage(today, average) {
	case core.Above:
		n.Body = fmt.Sprintf("You spent %s today, above your usual %s.",
			today.Format(r.currencySymbol), average.Format(r.currencySymbol))
	case core.Below:
		n.Body = fmt.Sprintf("You spent %s today, below your usual %s.",
			today.Format(r.currencySymbol), average.Format(r.currencySymbol))
	default:
		n.Body = fmt.Sprintf("You spent %s today, right around your usual %s.",
			today.Format(r.currencySymbol), average.Format(r.currencySymbol))
	}
	return n
}

// Weekly renders the calendar week's total, its per-day average and the peak
// weekday.
func (r *Renderer) Weekly(entries []core.SpendEntry, now time.Time) Notification {
	week := core.WeeklyTotal(entries, now, r.weekStart)

	n := Notification{
		Type:  amqp.SummaryWeekly,
		Title: "Weekly summary",
	}

	if week.Total.Cents == 0 {
		n.Body = "No spending logged this week."
		return n
	}

	n.Body = fmt.Sprintf("You spent %s this week, averaging %s a day.",
		week.Total.Format(r.currencySymbol), week.DailyAverage.Format(r.currencySymbol))

	if peak, ok := core.PeakWeekday(entries, now, r.weekStart); ok {
		n.Body += fmt.Sprintf(" %s was your biggest day at %s.",
			peak.Weekday, peak.Total.Format(r.currencySymbol))
	}
	return n
}
