package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mochi/internal/core"
	"mochi/internal/ledger"
	"mochi/internal/log"
)

type moneyJSON struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func (s *Server) money(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Formatted: m.Format(s.appearance.CurrencySymbol)}
}

type entryResponse struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Amount          moneyJSON `json:"amount"`
	Note            string    `json:"note,omitempty"`
	PaymentMethodID string    `json:"payment_method_id"`
}

func (s *Server) entryJSON(e core.SpendEntry) entryResponse {
	return entryResponse{
		ID:              e.ID.String(),
		Timestamp:       e.Timestamp,
		Amount:          s.money(e.Amount),
		Note:            e.Note,
		PaymentMethodID: e.MethodID().String(),
	}
}

type createEntryRequest struct {
	// Amount is a decimal string as typed on the keypad, e.g. "12.50".
	Amount          string     `json:"amount"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
	Note            string     `json:"note,omitempty"`
	PaymentMethodID string     `json:"payment_method_id,omitempty"`
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	timestamp := time.Now()
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	methodID := uuid.Nil
	if req.PaymentMethodID != "" {
		if methodID, err = uuid.Parse(req.PaymentMethodID); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid payment method id")
			return
		}
	}

	entry, err := s.svc.CreateEntry(r.Context(), timestamp, core.Money{Cents: cents}, sanitizeInput(req.Note), methodID)
	if err != nil {
		s.writeDomainError(w, r, err, "create entry")
		return
	}

	writeJSON(w, http.StatusCreated, s.entryJSON(entry))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	entry, err := s.svc.GetEntry(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err, "get entry")
		return
	}
	writeJSON(w, http.StatusOK, s.entryJSON(entry))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := s.svc.DeleteEntry(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err, "delete entry")
		return
	}

	resp := map[string]any{"undo_key": id.String()}
	if remaining, ok := s.svc.UndoRemaining(id.String()); ok {
		resp["undo_expires_ms"] = remaining.Milliseconds()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUndoEntry takes back a grace-windowed delete. An expired or unknown
// window reads as nothing to undo, never as an error.
func (s *Server) handleUndoEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"undone": s.svc.Undo(r.Context(), id.String())})
}

func (s *Server) handleCommitEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"committed": s.svc.Commit(id.String())})
}

func (s *Server) handleUndoLastAdd(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"undone": s.svc.UndoLastAdd(r.Context())})
}

type updateNoteRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.svc.UpdateNote(r.Context(), id, sanitizeInput(req.Note)); err != nil {
		s.writeDomainError(w, r, err, "update note")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid entry id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	result, err := s.svc.BulkDelete(r.Context(), ids)
	if err != nil {
		s.writeDomainError(w, r, err, "bulk delete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted":    result.Deleted,
		"undo_token": result.UndoToken,
	})
}

type bulkUndoRequest struct {
	UndoToken string `json:"undo_token"`
}

func (s *Server) handleBulkUndo(w http.ResponseWriter, r *http.Request) {
	var req bulkUndoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"undone": s.svc.Undo(r.Context(), req.UndoToken)})
}

// writeDomainError maps service errors to status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrZeroTimestamp),
		errors.Is(err, core.ErrNoteTooLong),
		errors.Is(err, core.ErrEmptyMethodName),
		errors.Is(err, core.ErrInvalidType):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op, log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
