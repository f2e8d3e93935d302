package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"funnelworks/internal/analytics"
	"funnelworks/internal/config"
	"funnelworks/internal/scoring"
	"funnelworks/internal/service"
	"funnelworks/internal/transport/rest/handler"
	"funnelworks/internal/transport/rest/middleware"
	"funnelworks/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	ToolService     *service.ToolService
	CTAService      *service.CTAService
	OperatorService *service.OperatorService
	Funnel          *analytics.Funnel
	WSHub           *ws.Hub
	RateLimiter     *middleware.RateLimiter
	ROI             scoring.ROIConfig
	HTTP            config.HTTPConfig
	OfferDays       int
	Logger          *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, c.Logger)
	toolHandler := handler.NewToolHandler(c.ToolService, c.Logger)
	ctaHandler := handler.NewCTAHandler(c.CTAService, c.Logger)
	operatorHandler := handler.NewOperatorHandler(c.OperatorService, c.Logger)
	eventHandler := handler.NewEventHandler(c.Funnel)
	roiHandler := handler.NewROIHandler(c.ROI, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Funnel, c.OfferDays, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.HTTP))
	r.Use(middleware.Tracing(c.Logger))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/tools", toolHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/cta/sms/fallback", ctaHandler.Fallback).Methods("GET")
	v1.HandleFunc("/events", eventHandler.Track).Methods("POST", "OPTIONS")
	v1.HandleFunc("/roi/calculate", roiHandler.Calculate).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/operator", wsHandler.OperatorWS).Methods("GET")
	v1.HandleFunc("/ws/countdown", wsHandler.CountdownWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Rate-limited public routes
	limited := v1.NewRoute().Subrouter()
	limited.Use(c.RateLimiter.Limit)

	limited.HandleFunc("/tools/{toolId}/sessions", toolHandler.Start).Methods("POST", "OPTIONS")
	limited.HandleFunc("/cta/sms", ctaHandler.SMS).Methods("POST", "OPTIONS")

	// Session routes (require the session's own token)
	sessionRoutes := v1.PathPrefix("/sessions/{sessionId}").Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("", toolHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("", toolHandler.Abandon).Methods("DELETE", "OPTIONS")
	sessionRoutes.HandleFunc("/answers", toolHandler.Answer).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/back", toolHandler.Back).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/inputs", toolHandler.Inputs).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/results.html", ctaHandler.Results).Methods("GET")

	limitedSession := sessionRoutes.NewRoute().Subrouter()
	limitedSession.Use(c.RateLimiter.Limit)

	limitedSession.HandleFunc("/lead", toolHandler.Lead).Methods("POST", "OPTIONS")
	limitedSession.HandleFunc("/cta/sms", ctaHandler.SessionSMS).Methods("POST", "OPTIONS")

	// Operator routes (require operator auth)
	operatorRoutes := v1.PathPrefix("/operator").Subrouter()
	operatorRoutes.Use(authMW.RequireOperator)

	operatorRoutes.HandleFunc("/leads", operatorHandler.Leads).Methods("GET", "OPTIONS")
	operatorRoutes.HandleFunc("/stats/{toolId}", operatorHandler.Stats).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(cfg config.HTTPConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.CORSMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.CORSHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
