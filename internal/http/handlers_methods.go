package http

import (
	"net/http"

	"github.com/google/uuid"

	"mochi/internal/core"
)

type methodResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ColorHex  string `json:"color_hex"`
	Type      string `json:"type"`
	IsDefault bool   `json:"is_default"`
}

func methodJSON(m core.PaymentMethod) methodResponse {
	return methodResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		ColorHex:  m.ColorHex,
		Type:      string(m.Type),
		IsDefault: m.IsDefault,
	}
}

func (s *Server) handleListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := s.svc.ListMethods(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "list methods")
		return
	}

	resp := make([]methodResponse, 0, len(methods))
	for _, m := range methods {
		resp = append(resp, methodJSON(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

type methodRequest struct {
	Name     string `json:"name"`
	ColorHex string `json:"color_hex"`
	Type     string `json:"type"`
}

func (s *Server) handleCreateMethod(w http.ResponseWriter, r *http.Request) {
	var req methodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := s.svc.CreateMethod(r.Context(), sanitizeInput(req.Name), req.ColorHex, core.PaymentType(req.Type))
	if err != nil {
		s.writeDomainError(w, r, err, "create method")
		return
	}
	writeJSON(w, http.StatusCreated, methodJSON(m))
}

func (s *Server) handleUpdateMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid method id")
		return
	}

	var req methodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m := core.PaymentMethod{
		ID:       id,
		Name:     sanitizeInput(req.Name),
		ColorHex: req.ColorHex,
		Type:     core.PaymentType(req.Type),
	}
	if err := s.svc.UpdateMethod(r.Context(), m); err != nil {
		s.writeDomainError(w, r, err, "update method")
		return
	}
	writeJSON(w, http.StatusOK, methodJSON(m))
}

func (s *Server) handleDeleteMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid method id")
		return
	}

	if err := s.svc.DeleteMethod(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err, "delete method")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleGetSelectedMethod(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.SelectedMethod(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "get selected method")
		return
	}
	writeJSON(w, http.StatusOK, methodJSON(m))
}

type selectMethodRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleSelectMethod(w http.ResponseWriter, r *http.Request) {
	var req selectMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid method id")
		return
	}

	if err := s.svc.SelectMethod(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err, "select method")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"selected": true})
}
