package cta

import (
	"strconv"

	"funnelworks/internal/model"
	"funnelworks/internal/scoring"
)

const (
	DefaultPhone   = "+16176428741"
	DefaultMessage = "Hey Sam, got your message—can't wait to talk. I'm in!"
)

var resultTemplates = map[model.ResultKind]string{
	model.ResultQuiz: "[NAME]! I just took the Constellation Score quiz and got [SCORE]/[MAX_SCORE] ([LEVEL]). " +
		"[RECOMMENDATION] I'm ready to discuss how you can help transform my funnel psychology! ✨",
	model.ResultDiagnostic: "[NAME]! Just completed your Funnel Alchemy diagnostic. My funnel health score is " +
		"[SCORE]/[MAX_SCORE] ([HEALTH_STATUS]) with [CRITICAL_LEAKS] critical and [MAJOR_LEAKS] major leaks. " +
		"[RECOMMENDATION] I need your help to fix these issues! 🔬",
	model.ResultROI: "[NAME]! Just used your ROI calculator. With your system, I could add [MONTHLY_INCREASE] per month " +
		"([ANNUAL_INCREASE] annually) with [ROI_PERCENT]% ROI! I need this transformation. Let's talk! 💰",
}

// ResultTemplate returns the SMS template for a result kind
func ResultTemplate(kind model.ResultKind) string {
	if tpl, ok := resultTemplates[kind]; ok {
		return tpl
	}
	return DefaultMessage
}

// ResultCustomization builds the token values for a scored session
func ResultCustomization(res *model.Result, lead *model.Lead, contactName string) map[string]string {
	c := map[string]string{"NAME": contactName}
	if lead != nil {
		c["EMAIL"] = lead.Email
	}
	if res == nil {
		return c
	}

	switch res.Kind {
	case model.ResultQuiz:
		c["SCORE"] = strconv.Itoa(res.Quiz.Score)
		c["MAX_SCORE"] = strconv.Itoa(res.Quiz.MaxScore)
		c["LEVEL"] = res.Quiz.Level
		c["RECOMMENDATION"] = res.Quiz.Recommendation
	case model.ResultDiagnostic:
		c["SCORE"] = strconv.Itoa(res.Diagnostic.TotalScore)
		c["MAX_SCORE"] = strconv.Itoa(res.Diagnostic.MaxScore)
		c["HEALTH_STATUS"] = res.Diagnostic.Health
		c["CRITICAL_LEAKS"] = strconv.Itoa(res.Diagnostic.CriticalCount)
		c["MAJOR_LEAKS"] = strconv.Itoa(res.Diagnostic.MajorCount)
		c["RECOMMENDATION"] = res.Diagnostic.Recommendation
	case model.ResultROI:
		c["MONTHLY_INCREASE"] = scoring.FormatCurrency(res.ROI.MonthlyIncrease)
		c["ANNUAL_INCREASE"] = scoring.FormatCurrency(res.ROI.AnnualIncrease)
		c["ROI_PERCENT"] = scoring.FormatPercent(res.ROI.ROIPercent)
	}
	return c
}
