package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"funnelworks/internal/cache"
	"funnelworks/internal/flow"
	"funnelworks/internal/model"
	"funnelworks/internal/scoring"
	"funnelworks/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// Helper functions

// writeJSON encodes before writing the header so an unencodable value becomes a 500
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		logger.Error("failed to encode response", zap.Int("status", status), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Debug("failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusFor maps domain errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, flow.ErrInvalidTransition), errors.Is(err, flow.ErrStepMismatch),
		errors.Is(err, flow.ErrWrongTool), errors.Is(err, cache.ErrUpdateConflict):
		return http.StatusConflict
	case errors.Is(err, flow.ErrUnknownOption), errors.Is(err, flow.ErrEmailRequired),
		errors.Is(err, scoring.ErrInvalidInputs), errors.Is(err, scoring.ErrValueOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrLeadsUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, msg)
}
