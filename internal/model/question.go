package model

// ToolID identifies one of the lead-capture tools
type ToolID string

const (
	ToolConstellationScore ToolID = "constellation_score" // 7-question psychology quiz
	ToolFunnelAlchemy      ToolID = "funnel_alchemy"      // 5-step leak diagnostic
	ToolSpellbookROI       ToolID = "spellbook_roi"       // ROI calculator, input-driven
)

// Severity is the leak severity attached to a diagnostic option
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Option is one selectable answer of a step
type Option struct {
	Text     string   `json:"text" bson:"text"`
	Value    int      `json:"value" bson:"value"` // 1..5 quiz, 1/2/3/5 diagnostic points
	Tag      string   `json:"tag" bson:"tag"`     // insight (quiz) or diagnosis (diagnostic)
	Severity Severity `json:"severity,omitempty" bson:"severity,omitempty"`
}

// Step is a single question of a tool, shown in fixed linear order
type Step struct {
	ID       string   `json:"id" bson:"id"`
	Title    string   `json:"title,omitempty" bson:"title,omitempty"` // diagnostic area name
	Prompt   string   `json:"prompt" bson:"prompt"`
	Subtitle string   `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Options  []Option `json:"options" bson:"options"`
}

// ToolInfo is the catalog entry returned to clients
type ToolInfo struct {
	ID         ToolID `json:"id"`
	Title      string `json:"title"`
	StepCount  int    `json:"stepCount"`
	InputBased bool   `json:"inputBased"`
}
