package model

import "github.com/golang-jwt/jwt/v5"

// OperatorClaims are JWT claims for the consultant's operator console
type OperatorClaims struct {
	OperatorID string `json:"operatorId"`
	jwt.RegisteredClaims
}

// SessionClaims are JWT claims scoping a visitor to one tool session
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	ToolID    ToolID `json:"toolId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for operator login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token      string `json:"token"`
	OperatorID string `json:"operatorId"`
}
