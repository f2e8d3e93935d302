package model

// ToolStats aggregates funnel counters for one tool
type ToolStats struct {
	ToolID    ToolID         `json:"toolId"`
	Started   int64          `json:"started"`
	Completed int64          `json:"completed"`
	Abandoned int64          `json:"abandoned"`
	Outcomes  []OutcomeCount `json:"outcomes"` // most frequent first
}

// OutcomeCount counts completions per result level or health state
type OutcomeCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// ClientEvent is a page or section event reported by the browser
type ClientEvent struct {
	Name       string                 `json:"name"`
	DistinctID string                 `json:"distinctId,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}
