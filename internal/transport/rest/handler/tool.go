package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"funnelworks/internal/model"
	"funnelworks/internal/service"
	"funnelworks/internal/transport/rest/middleware"
)

// ToolHandler handles tool session endpoints
type ToolHandler struct {
	toolSvc *service.ToolService
	logger  *zap.Logger
}

// NewToolHandler creates a new tool handler
func NewToolHandler(toolSvc *service.ToolService, logger *zap.Logger) *ToolHandler {
	return &ToolHandler{toolSvc: toolSvc, logger: logger}
}

// List handles GET /v1/tools
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"tools": h.toolSvc.Tools(),
	})
}

// Start handles POST /v1/tools/{toolId}/sessions
func (h *ToolHandler) Start(w http.ResponseWriter, r *http.Request) {
	tool := model.ToolID(mux.Vars(r)["toolId"])

	resp, err := h.toolSvc.Start(r.Context(), tool, r.UserAgent())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, resp)
}

// Get handles GET /v1/sessions/{sessionId}
func (h *ToolHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.toolSvc.Get(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

// Answer handles POST /v1/sessions/{sessionId}/answers
func (h *ToolHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req model.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.toolSvc.Answer(r.Context(), middleware.GetSessionID(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

// Back handles POST /v1/sessions/{sessionId}/back
func (h *ToolHandler) Back(w http.ResponseWriter, r *http.Request) {
	view, err := h.toolSvc.Back(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

// Inputs handles POST /v1/sessions/{sessionId}/inputs
func (h *ToolHandler) Inputs(w http.ResponseWriter, r *http.Request) {
	var in model.ROIInputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.toolSvc.SubmitInputs(r.Context(), middleware.GetSessionID(r.Context()), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

// Lead handles POST /v1/sessions/{sessionId}/lead
func (h *ToolHandler) Lead(w http.ResponseWriter, r *http.Request) {
	var req model.LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.toolSvc.SubmitLead(r.Context(), middleware.GetSessionID(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

// Abandon handles DELETE /v1/sessions/{sessionId}
func (h *ToolHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.toolSvc.Abandon(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
