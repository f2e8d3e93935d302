package analytics

import (
	"strings"
	"time"

	"funnelworks/internal/model"
)

const messagePreviewLen = 100

// clientEvents are the page and section events a browser may report directly
var clientEvents = map[string]bool{
	"$pageview":                 true,
	"hero_section_viewed":       true,
	"hero_cta_clicked":          true,
	"problem_agitation_viewed":  true,
	"dream_outcome_viewed":      true,
	"value_stack_viewed":        true,
	"risk_reversal_viewed":      true,
	"urgency_scarcity_viewed":   true,
	"tools_page_viewed":         true,
	"main_cta_clicked":          true,
	"urgency_timer_viewed":      true,
	"guarantees_section_viewed": true,
	"funnel_step_completed":     true,
	"conversion_completed":      true,
	"engagement_tracked":        true,
}

// IsClientEvent reports whether a browser may emit the named event
func IsClientEvent(name string) bool {
	return clientEvents[name]
}

// Funnel emits the named funnel events on top of a Tracker
type Funnel struct {
	tracker Tracker
	clock   func() time.Time
}

// NewFunnel creates an event emitter. A nil tracker drops everything.
func NewFunnel(t Tracker, clock func() time.Time) *Funnel {
	if t == nil {
		t = Nop{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Funnel{tracker: t, clock: clock}
}

// Tracker returns the underlying tracker
func (f *Funnel) Tracker() Tracker {
	return f.tracker
}

func (f *Funnel) emit(distinctID, name string, props Props) {
	if props == nil {
		props = Props{}
	}
	props["timestamp"] = f.clock().UTC().Format(time.RFC3339)
	f.tracker.Capture(Event{
		Name:       name,
		DistinctID: distinctID,
		Properties: props,
		Timestamp:  f.clock().UTC(),
	})
}

// Client forwards a whitelisted browser event
func (f *Funnel) Client(e model.ClientEvent) bool {
	if !IsClientEvent(e.Name) {
		return false
	}
	props := Props{}
	for k, v := range e.Properties {
		props[k] = v
	}
	f.emit(e.DistinctID, e.Name, props)
	return true
}

func (f *Funnel) ToolsPageViewed(id string) { f.emit(id, "tools_page_viewed", nil) }

func (f *Funnel) MainCTAClicked(id, location string) {
	f.emit(id, "main_cta_clicked", Props{"location": location})
}

func (f *Funnel) UrgencyTimerViewed(id string) { f.emit(id, "urgency_timer_viewed", nil) }

// ToolStarted emits the generic and the tool-specific start events
func (f *Funnel) ToolStarted(id string, tool model.ToolID) {
	switch tool {
	case model.ToolConstellationScore:
		f.emit(id, "constellation_quiz_started", nil)
	case model.ToolFunnelAlchemy:
		f.emit(id, "alchemy_finder_started", nil)
	case model.ToolSpellbookROI:
		f.emit(id, "roi_calculator_started", nil)
	}
	f.emit(id, "tool_started", Props{"tool_name": string(tool)})
}

// StepAnswered emits the per-tool answer event
func (f *Funnel) StepAnswered(id string, tool model.ToolID, stepIndex int, a model.Answer) {
	switch tool {
	case model.ToolConstellationScore:
		f.emit(id, "constellation_question_answered", Props{
			"question_index": stepIndex,
			"answer_value":   a.Value,
			"answer_text":    a.Tag,
		})
	case model.ToolFunnelAlchemy:
		f.emit(id, "alchemy_step_completed", Props{
			"step_index":    stepIndex,
			"leak_severity": string(a.Severity),
		})
	}
}

// LeadCaptured emits lead events. The address itself never leaves; only its domain.
func (f *Funnel) LeadCaptured(id string, tool model.ToolID, lead model.Lead) {
	hasPhone := lead.Phone != ""
	if tool == model.ToolConstellationScore {
		f.emit(id, "constellation_email_captured", Props{"has_phone": hasPhone})
	}
	f.emit(id, "email_captured", Props{
		"source":       string(tool),
		"has_phone":    hasPhone,
		"email_domain": EmailDomain(lead.Email),
	})
}

// ResultsViewed emits the per-tool results event
func (f *Funnel) ResultsViewed(id string, res *model.Result) {
	if res == nil {
		return
	}
	switch res.Kind {
	case model.ResultQuiz:
		f.emit(id, "constellation_results_viewed", Props{
			"score": res.Quiz.Score,
			"level": res.Quiz.Level,
		})
	case model.ResultDiagnostic:
		f.emit(id, "alchemy_results_viewed", Props{
			"total_score":   res.Diagnostic.TotalScore,
			"health_status": res.Diagnostic.Health,
		})
	case model.ResultROI:
		f.emit(id, "roi_calculator_completed", Props{
			"monthly_increase": res.ROI.MonthlyIncrease,
			"annual_increase":  res.ROI.AnnualIncrease,
			"roi_percentage":   res.ROI.ROIPercent,
			"payback_period":   res.ROI.PaybackMonths,
		})
	}
}

func (f *Funnel) ToolCompleted(id string, tool model.ToolID, data Props) {
	f.emit(id, "tool_completed", Props{
		"tool_name":       string(tool),
		"completion_data": data,
	})
}

func (f *Funnel) ToolAbandoned(id string, tool model.ToolID, stepCompleted, totalSteps int) {
	pct := 0.0
	if totalSteps > 0 {
		pct = float64(stepCompleted) / float64(totalSteps) * 100
	}
	f.emit(id, "tool_abandoned", Props{
		"tool_name":             string(tool),
		"step_completed":        stepCompleted,
		"total_steps":           totalSteps,
		"completion_percentage": pct,
	})
}

func (f *Funnel) SMSButtonClicked(id, message, context string, isMobile bool) {
	f.emit(id, "sms_button_clicked", Props{
		"message_preview": preview(message, messagePreviewLen),
		"context":         context,
		"is_mobile":       isMobile,
	})
}

func (f *Funnel) SMSLaunched(id string, success bool, platform, userAgent string) {
	f.emit(id, "sms_launched", Props{
		"success":    success,
		"platform":   platform,
		"user_agent": userAgent,
	})
}

func (f *Funnel) DesktopFallbackShown(id string) { f.emit(id, "desktop_sms_fallback_shown", nil) }

func (f *Funnel) FunnelStepCompleted(id, step string, extra Props) {
	props := Props{"funnel_step": step}
	for k, v := range extra {
		props[k] = v
	}
	f.emit(id, "funnel_step_completed", props)
}

func (f *Funnel) ErrorOccurred(id string, err error, context string) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	f.emit(id, "error_occurred", Props{
		"error_message": msg,
		"context":       context,
	})
}

func (f *Funnel) Conversion(id, conversionType string, value *float64) {
	f.emit(id, "conversion_completed", Props{
		"conversion_type":  conversionType,
		"conversion_value": value,
	})
}

// EmailDomain returns the part after the last @, or "" when there is none
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
