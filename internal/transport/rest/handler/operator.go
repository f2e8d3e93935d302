package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"funnelworks/internal/model"
	"funnelworks/internal/service"
)

// OperatorHandler handles dashboard endpoints
type OperatorHandler struct {
	operatorSvc *service.OperatorService
	logger      *zap.Logger
}

// NewOperatorHandler creates a new operator handler
func NewOperatorHandler(operatorSvc *service.OperatorService, logger *zap.Logger) *OperatorHandler {
	return &OperatorHandler{operatorSvc: operatorSvc, logger: logger}
}

// Leads handles GET /v1/operator/leads?tool=&limit=
func (h *OperatorHandler) Leads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var limit int64
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	leads, err := h.operatorSvc.Leads(r.Context(), model.ToolID(q.Get("tool")), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"leads": leads,
	})
}

// Stats handles GET /v1/operator/stats/{toolId}
func (h *OperatorHandler) Stats(w http.ResponseWriter, r *http.Request) {
	tool := model.ToolID(mux.Vars(r)["toolId"])

	stats, err := h.operatorSvc.Stats(r.Context(), tool)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stats)
}
