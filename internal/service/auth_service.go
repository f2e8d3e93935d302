package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"funnelworks/internal/config"
	"funnelworks/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles operator login and visitor session tokens
type AuthService struct {
	operatorUsername string
	operatorPassword string
	jwtSecret        []byte
	sessionTTL       time.Duration
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig, now func() time.Time) *AuthService {
	if now == nil {
		now = time.Now
	}
	ttl := cfg.SessionTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		operatorUsername: cfg.OperatorUsername,
		operatorPassword: cfg.OperatorPassword,
		jwtSecret:        []byte(cfg.JWTSecret),
		sessionTTL:       ttl,
		now:              now,
	}
}

// Login validates credentials and returns an operator token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.operatorUsername || password != s.operatorPassword {
		return nil, ErrInvalidCredentials
	}

	operatorID := "op_" + uuid.New().String()[:8]

	claims := &model.OperatorClaims{
		OperatorID: operatorID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(s.now().Add(12 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:      tokenString,
		OperatorID: operatorID,
	}, nil
}

func (s *AuthService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidToken
	}
	return s.jwtSecret, nil
}

// ValidateOperatorToken validates an operator JWT and returns claims
func (s *AuthService) ValidateOperatorToken(tokenString string) (*model.OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.OperatorClaims{}, s.keyFunc, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.OperatorClaims)
	if !ok || !token.Valid || claims.OperatorID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateSessionToken creates a token scoped to one tool session
func (s *AuthService) GenerateSessionToken(sessionID string, tool model.ToolID) (string, error) {
	claims := &model.SessionClaims{
		SessionID: sessionID,
		ToolID:    tool,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateSessionToken validates a session JWT and returns claims
func (s *AuthService) ValidateSessionToken(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, s.keyFunc, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
