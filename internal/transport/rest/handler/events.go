package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"funnelworks/internal/analytics"
	"funnelworks/internal/model"
	"funnelworks/internal/scoring"
)

// EventHandler accepts browser analytics events
type EventHandler struct {
	funnel *analytics.Funnel
}

// NewEventHandler creates a new event handler
func NewEventHandler(funnel *analytics.Funnel) *EventHandler {
	return &EventHandler{funnel: funnel}
}

// Track handles POST /v1/events
func (h *EventHandler) Track(w http.ResponseWriter, r *http.Request) {
	var e model.ClientEvent
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.funnel.Client(e) {
		writeError(w, http.StatusBadRequest, "unknown event: "+e.Name)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ROIHandler previews calculator results without a session
type ROIHandler struct {
	cfg    scoring.ROIConfig
	logger *zap.Logger
}

// NewROIHandler creates a new ROI handler
func NewROIHandler(cfg scoring.ROIConfig, logger *zap.Logger) *ROIHandler {
	return &ROIHandler{cfg: cfg, logger: logger}
}

// Calculate handles POST /v1/roi/calculate
func (h *ROIHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var in model.ROIInputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := scoring.CalculateROI(h.cfg, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}
