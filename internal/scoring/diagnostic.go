package scoring

import (
	"fmt"

	"funnelworks/internal/model"
)

// SeverityPoints maps a leak severity to its diagnostic points
var SeverityPoints = map[model.Severity]int{
	model.SeverityNone:     5,
	model.SeverityMinor:    3,
	model.SeverityMajor:    2,
	model.SeverityCritical: 1,
}

// severityCounts is the input of the health rule table
type severityCounts struct {
	critical, major, minor int
}

// HealthRule maps severity counts to an overall health state
type HealthRule struct {
	Health         string
	Recommendation string
	match          func(c severityCounts) bool
}

// HealthRules are evaluated in priority order; the first match wins.
var HealthRules = []HealthRule{
	{
		Health:         "Critical Condition",
		Recommendation: "Your funnel has critical leaks that need immediate attention. Every day you delay is costing significant revenue.",
		match:          func(c severityCounts) bool { return c.critical > 0 },
	},
	{
		Health:         "Major Issues",
		Recommendation: "Multiple major leaks are severely impacting your conversion rates. Professional intervention needed.",
		match:          func(c severityCounts) bool { return c.major >= 2 },
	},
	{
		Health:         "Needs Optimization",
		Recommendation: "Your funnel has good bones but significant optimization opportunities. Psychology-first improvements will yield major gains.",
		match:          func(c severityCounts) bool { return c.major >= 1 || c.minor >= 3 },
	},
	{
		Health:         "Well-Optimized",
		Recommendation: "Your funnel is performing well. Advanced psychological fine-tuning could push performance even higher.",
		match:          func(c severityCounts) bool { return true },
	},
}

var severityImpact = map[model.Severity]string{
	model.SeverityNone:     "No negative impact - this area is well optimized",
	model.SeverityMinor:    "5-15% conversion loss - minor optimization opportunity",
	model.SeverityMajor:    "15-35% conversion loss - significant revenue impact",
	model.SeverityCritical: "35-70% conversion loss - massive revenue hemorrhaging",
}

const (
	noLeakFix   = "Continue current approach - it's working well"
	fallbackFix = "Professional funnel optimization needed"
)

// fixes is keyed by step title, then severity
var fixes = map[string]map[model.Severity]string{
	"Traffic Source Quality": {
		model.SeverityMinor:    "Refine targeting parameters and audience segmentation",
		model.SeverityMajor:    "Overhaul traffic acquisition strategy and improve qualification",
		model.SeverityCritical: "Complete traffic audit and rebuild acquisition funnel",
	},
	"First Impression & Value Prop": {
		model.SeverityMinor:    "Strengthen headline and add emotional hooks",
		model.SeverityMajor:    "Redesign value proposition with psychology-first messaging",
		model.SeverityCritical: "Complete messaging overhaul with behavioral triggers",
	},
	"Trust & Credibility Signals": {
		model.SeverityMinor:    "Add more social proof and testimonials",
		model.SeverityMajor:    "Implement comprehensive trust architecture",
		model.SeverityCritical: "Build complete credibility system from scratch",
	},
	"Urgency & Scarcity Implementation": {
		model.SeverityMinor:    "Strengthen existing urgency elements",
		model.SeverityMajor:    "Implement multi-layer urgency strategy",
		model.SeverityCritical: "Build complete urgency psychology system",
	},
	"Objection Handling Strategy": {
		model.SeverityMinor:    "Proactively address top objections in copy",
		model.SeverityMajor:    "Implement systematic objection elimination",
		model.SeverityCritical: "Complete objection psychology overhaul needed",
	},
}

// Impact returns the conversion-loss text for a severity
func Impact(sev model.Severity) string {
	return severityImpact[sev]
}

// Fix returns the remediation for a step title and severity.
// Unknown pairs get the generic fallback.
func Fix(title string, sev model.Severity) string {
	if sev == model.SeverityNone {
		return noLeakFix
	}
	if byTitle, ok := fixes[title]; ok {
		if fix, ok := byTitle[sev]; ok {
			return fix
		}
	}
	return fallbackFix
}

// HealthFor applies the rule table to severity counts
func HealthFor(critical, major, minor int) HealthRule {
	c := severityCounts{critical: critical, major: major, minor: minor}
	for _, rule := range HealthRules {
		if rule.match(c) {
			return rule
		}
	}
	return HealthRules[len(HealthRules)-1]
}

// ScoreDiagnostic sums severity points across steps and classifies overall health.
func ScoreDiagnostic(steps []model.Step, answers map[string]model.Answer) (*model.DiagnosticResult, error) {
	res := &model.DiagnosticResult{
		MaxScore: len(steps) * SeverityPoints[model.SeverityNone],
		Leaks:    make([]model.LeakResult, 0, len(steps)),
	}

	for _, step := range steps {
		a, ok := answers[step.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingAnswer, step.ID)
		}
		points, ok := SeverityPoints[a.Severity]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSeverity, a.Severity)
		}
		res.TotalScore += points

		switch a.Severity {
		case model.SeverityCritical:
			res.CriticalCount++
		case model.SeverityMajor:
			res.MajorCount++
		case model.SeverityMinor:
			res.MinorCount++
		}

		res.Leaks = append(res.Leaks, model.LeakResult{
			StepID:    step.ID,
			Area:      step.Title,
			Severity:  a.Severity,
			Diagnosis: a.Tag,
			Impact:    Impact(a.Severity),
			Fix:       Fix(step.Title, a.Severity),
		})
	}

	rule := HealthFor(res.CriticalCount, res.MajorCount, res.MinorCount)
	res.Health = rule.Health
	res.Recommendation = rule.Recommendation
	return res, nil
}

func leakOptions(none, minor, major, critical [2]string) []model.Option {
	return []model.Option{
		{Text: none[0], Value: SeverityPoints[model.SeverityNone], Tag: none[1], Severity: model.SeverityNone},
		{Text: minor[0], Value: SeverityPoints[model.SeverityMinor], Tag: minor[1], Severity: model.SeverityMinor},
		{Text: major[0], Value: SeverityPoints[model.SeverityMajor], Tag: major[1], Severity: model.SeverityMajor},
		{Text: critical[0], Value: SeverityPoints[model.SeverityCritical], Tag: critical[1], Severity: model.SeverityCritical},
	}
}

// AlchemySteps are the five areas of the Funnel Alchemy diagnostic
var AlchemySteps = []model.Step{
	{
		ID:     "traffic_source",
		Title:  "Traffic Source Quality",
		Prompt: "The quality of your traffic determines everything downstream",
		Options: leakOptions(
			[2]string{"Mostly organic/referral traffic from qualified sources", "High-quality traffic foundation"},
			[2]string{"Mix of paid and organic, reasonably targeted", "Decent traffic quality with room for optimization"},
			[2]string{"Mostly paid traffic, broad targeting", "Traffic quality issues affecting conversion"},
			[2]string{"Poor targeting, cold traffic, or don't know sources", "Critical traffic quality leak - wrong people seeing your offer"},
		),
	},
	{
		ID:     "first_impression",
		Title:  "First Impression & Value Prop",
		Prompt: "Do visitors immediately understand what you offer and why they need it?",
		Options: leakOptions(
			[2]string{"Crystal clear value prop that speaks to specific pain points", "Strong psychological messaging foundation"},
			[2]string{"Pretty clear what we do, decent headline", "Good clarity but missing emotional hooks"},
			[2]string{"Somewhat confusing, takes time to understand the offer", "Clarity leak - visitors confused about value"},
			[2]string{"Visitors leave immediately, high bounce rate", "Critical messaging leak - value proposition failure"},
		),
	},
	{
		ID:     "trust_credibility",
		Title:  "Trust & Credibility Signals",
		Prompt: "How quickly do visitors trust you enough to engage?",
		Options: leakOptions(
			[2]string{"Multiple trust signals: testimonials, social proof, guarantees, authority", "Strong trust architecture in place"},
			[2]string{"Some testimonials and social proof, basic credibility", "Decent trust but missing key psychological triggers"},
			[2]string{"Minimal social proof, questionable credibility signals", "Trust leak - visitors hesitant to engage"},
			[2]string{"No testimonials, social proof, or trust signals", "Critical trust leak - visitors don't believe you can deliver"},
		),
	},
	{
		ID:     "urgency_scarcity",
		Title:  "Urgency & Scarcity Implementation",
		Prompt: "What motivates visitors to act NOW instead of later?",
		Options: leakOptions(
			[2]string{"Multiple urgency layers: time, quantity, bonuses with real consequences", "Advanced urgency psychology implemented"},
			[2]string{"Some urgency elements but not consistent throughout", "Basic urgency present but missing psychological depth"},
			[2]string{"Weak urgency attempts, easily ignored", "Urgency leak - no compelling reason to act now"},
			[2]string{"No urgency or scarcity elements at all", "Critical urgency leak - visitors procrastinate indefinitely"},
		),
	},
	{
		ID:     "objection_handling",
		Title:  "Objection Handling Strategy",
		Prompt: "How well do you address visitor doubts and concerns?",
		Options: leakOptions(
			[2]string{"Proactive objection handling throughout, psychological reframing", "Masterful objection elimination psychology"},
			[2]string{"FAQ section and some objection addressing in copy", "Basic objection handling but missing psychological depth"},
			[2]string{"Minimal objection addressing, mostly reactive", "Objection leak - doubts killing conversions"},
			[2]string{"No systematic objection handling strategy", "Critical objection leak - visitors talking themselves out of buying"},
		),
	},
}
