package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToOperators(msgType string, payload interface{})
}

// Operator feed message types
const (
	MsgSessionStarted   = "session_started"
	MsgSessionProgress  = "session_progress"
	MsgLeadCaptured     = "lead_captured"
	MsgSessionAbandoned = "session_abandoned"
)
