package http

import (
	"net/http"

	"mochi/internal/core"
)

type dayStartResponse struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (s *Server) handleGetDayStart(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.DayStart(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "get day start")
		return
	}
	writeJSON(w, http.StatusOK, dayStartResponse{Hour: cfg.Hour, Minute: cfg.Minute})
}

func (s *Server) handleSetDayStart(w http.ResponseWriter, r *http.Request) {
	var req dayStartResponse
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Out-of-range values are clamped, matching the settings screen's picker.
	cfg := core.DayStartConfig{Hour: req.Hour, Minute: req.Minute}.Normalize()
	if err := s.svc.SetDayStart(r.Context(), cfg); err != nil {
		s.writeDomainError(w, r, err, "set day start")
		return
	}
	writeJSON(w, http.StatusOK, dayStartResponse{Hour: cfg.Hour, Minute: cfg.Minute})
}
