package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"funnelworks/internal/model"
	"funnelworks/internal/service"
)

type contextKey string

const (
	OperatorIDKey contextKey = "operatorId"
	SessionIDKey  contextKey = "sessionId"
	ToolIDKey     contextKey = "toolId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireOperator validates operator JWT from Authorization header
func (m *AuthMiddleware) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateOperatorToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), OperatorIDKey, claims.OperatorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession validates a session JWT. The token must belong to the {sessionId} in the path.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateSessionToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}
		if id := mux.Vars(r)["sessionId"]; id != "" && id != claims.SessionID {
			http.Error(w, `{"error":"token does not match session"}`, http.StatusForbidden)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, SessionIDKey, claims.SessionID)
		ctx = context.WithValue(ctx, ToolIDKey, claims.ToolID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOperatorID extracts operator ID from context
func GetOperatorID(ctx context.Context) string {
	if v := ctx.Value(OperatorIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetSessionID extracts session ID from context
func GetSessionID(ctx context.Context) string {
	if v := ctx.Value(SessionIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetToolID extracts tool ID from context
func GetToolID(ctx context.Context) model.ToolID {
	if v := ctx.Value(ToolIDKey); v != nil {
		return v.(model.ToolID)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
