package view

import (
	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"

	"funnelworks/internal/cta"
	"funnelworks/internal/model"
	"funnelworks/internal/scoring"
)

func page(title string, body ...g.Node) g.Node {
	return c.HTML5(c.HTML5Props{
		Title:    title,
		Language: "en",
		Head: []g.Node{
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			Meta(Name("robots"), Content("noindex")),
		},
		Body: []g.Node{
			Main(Class("container"), g.Group(body)),
		},
	})
}

// SMSFallback is shown to visitors who cannot open an sms: link.
// It shows the number and the message to send by hand.
func SMSFallback(d *cta.Dispatch) g.Node {
	return page("Text us",
		H1(g.Text("Send us a text")),
		P(Class("lead"), g.Text("Text this number from your phone:")),
		P(Class("phone"),
			A(Href("tel:"+cta.Digits(d.Phone)), Strong(g.Text(d.DisplayPhone))),
		),
		P(g.Text("With this message:")),
		Textarea(
			ID("sms-message"),
			ReadOnly(),
			Rows("4"),
			Class("message"),
			g.Text(d.Message),
		),
		P(Class("hint"), g.Text("Copy the message above and paste it into a new text.")),
	)
}

// Results renders a finished session's result with a text CTA
func Results(sess *model.ToolSession, contactName, smsHref string) g.Node {
	res := sess.Result
	var body g.Node
	switch res.Kind {
	case model.ResultQuiz:
		body = quizResult(res.Quiz)
	case model.ResultDiagnostic:
		body = diagnosticResult(res.Diagnostic)
	case model.ResultROI:
		body = roiResult(res.ROI)
	}

	return page("Your results",
		body,
		Div(Class("cta"),
			A(Href(smsHref), Class("btn"), g.Textf("Text %s your results", contactName)),
		),
	)
}

func quizResult(r *model.QuizResult) g.Node {
	return Section(Class("result quiz"),
		H1(g.Text(r.Level)),
		P(Class("score"), g.Textf("%d / %d", r.Score, r.MaxScore)),
		P(g.Text(r.Description)),
		H2(g.Text("Recommendation")),
		P(g.Text(r.Recommendation)),
		P(Class("potential"), g.Text(r.Potential)),
		H2(g.Text("Insights")),
		Ul(g.Group(g.Map(r.Insights, func(s string) g.Node {
			return Li(g.Text(s))
		}))),
	)
}

func diagnosticResult(r *model.DiagnosticResult) g.Node {
	return Section(Class("result diagnostic"),
		H1(g.Text(r.Health)),
		P(Class("score"), g.Textf("Funnel health score %d / %d", r.TotalScore, r.MaxScore)),
		P(g.Textf("%d critical, %d major, %d minor leaks", r.CriticalCount, r.MajorCount, r.MinorCount)),
		P(g.Text(r.Recommendation)),
		g.If(len(r.Leaks) > 0, Table(
			THead(Tr(Th(g.Text("Area")), Th(g.Text("Severity")), Th(g.Text("Impact")), Th(g.Text("Fix")))),
			TBody(g.Group(g.Map(r.Leaks, func(l model.LeakResult) g.Node {
				return Tr(
					Class("severity-"+string(l.Severity)),
					Td(g.Text(l.Area)),
					Td(g.Text(string(l.Severity))),
					Td(g.Text(l.Impact)),
					Td(g.Text(l.Fix)),
				)
			}))),
		)),
	)
}

func roiResult(r *model.ROIResult) g.Node {
	return Section(Class("result roi"),
		H1(g.Textf("%s more per month", scoring.FormatCurrency(r.MonthlyIncrease))),
		Dl(
			Dt(g.Text("Current monthly revenue")), Dd(g.Text(scoring.FormatCurrency(r.CurrentMonthlyRevenue))),
			Dt(g.Text("Projected monthly revenue")), Dd(g.Text(scoring.FormatCurrency(r.ProjectedMonthlyRevenue))),
			Dt(g.Text("Annual increase")), Dd(g.Text(scoring.FormatCurrency(r.AnnualIncrease))),
			Dt(g.Text("ROI")), Dd(g.Text(scoring.FormatPercent(r.ROIPercent)+"%")),
			Dt(g.Text("Payback")), Dd(g.Text(r.PaybackLabel)),
		),
		P(Class("assumption"), g.Textf("Assumes %s%% conversion on a %s investment.",
			scoring.FormatPercent(r.TargetConversion), scoring.FormatCurrency(r.Investment))),
	)
}
