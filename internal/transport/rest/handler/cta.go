package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	g "maragu.dev/gomponents"

	"funnelworks/internal/cta"
	"funnelworks/internal/service"
	"funnelworks/internal/transport/rest/middleware"
	"funnelworks/internal/view"
)

const fallbackPath = "/v1/cta/sms/fallback"

// CTAHandler handles SMS call-to-action endpoints and pages
type CTAHandler struct {
	ctaSvc *service.CTAService
	logger *zap.Logger
}

// NewCTAHandler creates a new CTA handler
func NewCTAHandler(ctaSvc *service.CTAService, logger *zap.Logger) *CTAHandler {
	return &CTAHandler{ctaSvc: ctaSvc, logger: logger}
}

// SMS handles POST /v1/cta/sms
func (h *CTAHandler) SMS(w http.ResponseWriter, r *http.Request) {
	var req cta.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserAgent = r.UserAgent()

	writeJSON(w, h.logger, http.StatusOK, h.ctaSvc.Dispatch(req))
}

// SessionSMS handles POST /v1/sessions/{sessionId}/cta/sms
func (h *CTAHandler) SessionSMS(w http.ResponseWriter, r *http.Request) {
	var req cta.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserAgent = r.UserAgent()

	d, err := h.ctaSvc.DispatchForSession(r.Context(), middleware.GetSessionID(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, d)
}

// Fallback handles GET /v1/cta/sms/fallback?message=&phone=
func (h *CTAHandler) Fallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := h.ctaSvc.Preview(cta.Request{
		Phone:    q.Get("phone"),
		Template: q.Get("message"),
	})
	h.render(w, view.SMSFallback(d))
}

// Results handles GET /v1/sessions/{sessionId}/results.html
func (h *CTAHandler) Results(w http.ResponseWriter, r *http.Request) {
	sess, err := h.ctaSvc.ResultSession(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	d := h.ctaSvc.PreviewForSession(sess, r.UserAgent())
	href := d.Link
	if d.Mode != cta.ModeDeepLink {
		href = fallbackPath + "?" + url.Values{
			"message": {d.Message},
			"phone":   {d.Phone},
		}.Encode()
	}
	h.render(w, view.Results(sess, h.ctaSvc.ContactName(), href))
}

func (h *CTAHandler) render(w http.ResponseWriter, page g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := page.Render(w); err != nil {
		h.logger.Warn("page render failed", zap.Error(err))
	}
}
