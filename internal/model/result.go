package model

// ResultKind tags which variant of Result is populated
type ResultKind string

const (
	ResultQuiz       ResultKind = "quiz"
	ResultDiagnostic ResultKind = "diagnostic"
	ResultROI        ResultKind = "roi"
)

// Result is the derived outcome of a tool session. Exactly one pointer matches Kind.
type Result struct {
	Kind       ResultKind        `json:"kind" bson:"kind"`
	Quiz       *QuizResult       `json:"quiz,omitempty" bson:"quiz,omitempty"`
	Diagnostic *DiagnosticResult `json:"diagnostic,omitempty" bson:"diagnostic,omitempty"`
	ROI        *ROIResult        `json:"roi,omitempty" bson:"roi,omitempty"`
}

// Outcome returns the label used for completion stats
func (r *Result) Outcome() string {
	switch r.Kind {
	case ResultQuiz:
		return r.Quiz.Level
	case ResultDiagnostic:
		return r.Diagnostic.Health
	case ResultROI:
		if r.ROI.Recoverable {
			return "recoverable"
		}
		return "not_recoverable"
	}
	return "unknown"
}

// QuizResult is the threshold-sum outcome
type QuizResult struct {
	Score          int      `json:"score" bson:"score"`
	MaxScore       int      `json:"maxScore" bson:"maxScore"`
	Level          string   `json:"level" bson:"level"`
	Description    string   `json:"description" bson:"description"`
	Recommendation string   `json:"recommendation" bson:"recommendation"`
	Potential      string   `json:"potential" bson:"potential"`
	Insights       []string `json:"insights" bson:"insights"` // one per step, in step order
}

// LeakResult is the per-step finding of the diagnostic
type LeakResult struct {
	StepID    string   `json:"stepId" bson:"stepId"`
	Area      string   `json:"area" bson:"area"`
	Severity  Severity `json:"severity" bson:"severity"`
	Diagnosis string   `json:"diagnosis" bson:"diagnosis"`
	Impact    string   `json:"impact" bson:"impact"`
	Fix       string   `json:"fix" bson:"fix"`
}

// DiagnosticResult is the severity-sum outcome
type DiagnosticResult struct {
	TotalScore     int          `json:"totalScore" bson:"totalScore"`
	MaxScore       int          `json:"maxScore" bson:"maxScore"`
	Health         string       `json:"health" bson:"health"`
	Recommendation string       `json:"recommendation" bson:"recommendation"`
	CriticalCount  int          `json:"criticalCount" bson:"criticalCount"`
	MajorCount     int          `json:"majorCount" bson:"majorCount"`
	MinorCount     int          `json:"minorCount" bson:"minorCount"`
	Leaks          []LeakResult `json:"leaks" bson:"leaks"`
}

// ROIResult is the closed-form ROI outcome.
// PaybackMonths is nil when the monthly increase is not positive.
type ROIResult struct {
	CurrentMonthlyRevenue   float64  `json:"currentMonthlyRevenue" bson:"currentMonthlyRevenue"`
	ProjectedMonthlyRevenue float64  `json:"projectedMonthlyRevenue" bson:"projectedMonthlyRevenue"`
	MonthlyIncrease         float64  `json:"monthlyIncrease" bson:"monthlyIncrease"`
	AnnualIncrease          float64  `json:"annualIncrease" bson:"annualIncrease"`
	ROIPercent              float64  `json:"roiPercent" bson:"roiPercent"`
	PaybackMonths           *float64 `json:"paybackMonths" bson:"paybackMonths,omitempty"`
	Recoverable             bool     `json:"recoverable" bson:"recoverable"`
	PaybackLabel            string   `json:"paybackLabel" bson:"paybackLabel"`
	TargetConversion        float64  `json:"targetConversion" bson:"targetConversion"`
	Investment              float64  `json:"investment" bson:"investment"`
}
