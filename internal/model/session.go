package model

import "time"

// SessionState is the flow state of a tool session
type SessionState string

const (
	StateAsking         SessionState = "asking"
	StateCapturingLead  SessionState = "capturing_lead"
	StateShowingResults SessionState = "showing_results" // terminal
)

// ToolSession is the ephemeral per-visitor state of one tool run
type ToolSession struct {
	ID        string            `json:"id"`
	ToolID    ToolID            `json:"toolId"`
	State     SessionState      `json:"state"`
	StepIndex int               `json:"stepIndex"` // meaningful only while asking
	Answers   map[string]Answer `json:"answers"`
	Inputs    *ROIInputs        `json:"inputs,omitempty"`
	Lead      *Lead             `json:"lead,omitempty"`
	Result    *Result           `json:"result,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	StartedAt time.Time         `json:"startedAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// SessionView is what clients see of a session
type SessionView struct {
	SessionID      string            `json:"sessionId"`
	ToolID         ToolID            `json:"toolId"`
	State          SessionState      `json:"state"`
	StepIndex      int               `json:"stepIndex"`
	TotalSteps     int               `json:"totalSteps"`
	Progress       float64           `json:"progress"`
	Step           *Step             `json:"step,omitempty"`
	Answers        map[string]Answer `json:"answers,omitempty"`
	Result         *Result           `json:"result,omitempty"`
	AdvanceDelayMs int               `json:"advanceDelayMs,omitempty"` // cosmetic, client-side only
}

// StartSessionResponse is returned when a tool session starts
type StartSessionResponse struct {
	SessionID string       `json:"sessionId"`
	Token     string       `json:"token"`
	View      *SessionView `json:"view"`
}
