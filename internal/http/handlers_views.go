package http

import (
	"log/slog"
	"net/http"
	"time"

	"mochi/internal/amqp"
	"mochi/internal/widget"
)

const summaryCacheKey = "summary"

type dayGroupResponse struct {
	Day     string          `json:"day"`
	Total   moneyJSON       `json:"total"`
	Entries []entryResponse `json:"entries"`
}

// handleHistory serves the ledger grouped by ritual day, most recent first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	groups, err := s.svc.History(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "history")
		return
	}

	resp := make([]dayGroupResponse, 0, len(groups))
	for _, g := range groups {
		dg := dayGroupResponse{
			Day:     g.Day.String(),
			Total:   s.money(g.Total),
			Entries: make([]entryResponse, 0, len(g.Entries)),
		}
		for _, e := range g.Entries {
			dg.Entries = append(dg.Entries, s.entryJSON(e))
		}
		resp = append(resp, dg)
	}
	writeJSON(w, http.StatusOK, resp)
}

type summaryResponse struct {
	TodayTotal     moneyJSON `json:"today_total"`
	RollingAverage moneyJSON `json:"rolling_average"`
	Band           string    `json:"band"`
	WeekTotal      moneyJSON `json:"week_total"`
	WeekDailyAvg   moneyJSON `json:"week_daily_average"`
	PeakWeekday    *peakJSON `json:"peak_weekday,omitempty"`
}

type peakJSON struct {
	Weekday string    `json:"weekday"`
	Total   moneyJSON `json:"total"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if cached, found := s.summaryCache.Get(summaryCacheKey); found {
		slog.DebugContext(r.Context(), "Summary cache hit")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.svc.Summarize(r.Context(), time.Now(), s.weekStart, s.windowDays)
	if err != nil {
		s.writeDomainError(w, r, err, "summary")
		return
	}

	resp := summaryResponse{
		TodayTotal:     s.money(summary.TodayTotal),
		RollingAverage: s.money(summary.RollingAverage),
		Band:           string(summary.Band),
		WeekTotal:      s.money(summary.Week.Total),
		WeekDailyAvg:   s.money(summary.Week.DailyAverage),
	}
	if summary.HasPeak {
		resp.PeakWeekday = &peakJSON{
			Weekday: summary.PeakWeekday.Weekday.String(),
			Total:   s.money(summary.PeakWeekday.Total),
		}
	}

	s.summaryCache.Set(summaryCacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

// handleTriggerSummary publishes a summary trigger for the worker, the path a
// notification tap routes back through.
func (s *Server) handleTriggerSummary(w http.ResponseWriter, r *http.Request) {
	summaryType := r.PathValue("type")
	if !amqp.ValidSummaryType(summaryType) {
		writeError(w, http.StatusUnprocessableEntity, "unknown summary type")
		return
	}

	if err := s.svc.TriggerSummary(r.Context(), summaryType); err != nil {
		s.writeDomainError(w, r, err, "trigger summary")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"triggered": true})
}

// handleWidget serves the payload the widget process renders from.
func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.ListEntries(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "widget")
		return
	}
	cfg, err := s.svc.DayStart(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "widget")
		return
	}

	payload := widget.Build(entries, time.Now(), cfg, s.appearance)
	writeJSON(w, http.StatusOK, payload)
}
