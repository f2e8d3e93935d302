package cta

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"funnelworks/internal/analytics"
	"funnelworks/internal/model"
)

const (
	iphoneAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15"
	androidAgent = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Mobile"
	desktopAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/126.0"
)

func TestRender(t *testing.T) {
	cases := []struct {
		name string
		tpl  string
		c    map[string]string
		want string
	}{
		{"single", "Score [SCORE]!", map[string]string{"score": "21"}, "Score 21!"},
		{"every occurrence", "[SCORE]/[SCORE]", map[string]string{"SCORE": "7"}, "7/7"},
		{"unmatched stays", "[SCORE] [LEVEL]", map[string]string{"SCORE": "7"}, "7 [LEVEL]"},
		{"no tokens", "plain text", map[string]string{"SCORE": "7"}, "plain text"},
		{"nil customization", "[SCORE]", nil, "[SCORE]"},
		{"no re-expansion", "[A]", map[string]string{"A": "[B]", "B": "x"}, "[B]"},
		{"colliding keys resolve once", "[SCORE]", map[string]string{"SCORE": "7", "score": "99"}, "99"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Render(tc.tpl, tc.c))
		})
	}
}

func TestDeviceDetection(t *testing.T) {
	assert.True(t, IsMobile(iphoneAgent))
	assert.True(t, IsMobile(androidAgent))
	assert.True(t, IsMobile("Opera Mini/9.80"))
	assert.False(t, IsMobile(desktopAgent))
	assert.True(t, IsIOS("Mozilla/5.0 (iPad; CPU OS 16_0)"))
	assert.False(t, IsIOS(androidAgent))

	assert.Equal(t, "ios", Platform(iphoneAgent))
	assert.Equal(t, "android", Platform(androidAgent))
	assert.Equal(t, "mobile", Platform("BlackBerry9700"))
	assert.Equal(t, "desktop", Platform(desktopAgent))
}

func TestSMSLink(t *testing.T) {
	link, err := SMSLink("+1 (617) 642-8741", "Hi there & more", iphoneAgent)
	require.NoError(t, err)
	assert.Equal(t, "sms:16176428741&body=Hi%20there%20%26%20more", link)

	link, err = SMSLink("+1 (617) 642-8741", "Hi there", androidAgent)
	require.NoError(t, err)
	assert.Equal(t, "sms:16176428741?body=Hi%20there", link)

	_, err = SMSLink("call me", "x", androidAgent)
	assert.ErrorIs(t, err, ErrNoDigits)
}

func TestSMSLinkBodyRoundTrips(t *testing.T) {
	msg := "Score 21/35 (Glowing Ember). 100% ready! ✨ +plus"
	link, err := SMSLink("6176428741", msg, androidAgent)
	require.NoError(t, err)

	body := link[strings.Index(link, "body=")+len("body="):]
	assert.NotContains(t, body, " ")
	assert.NotContains(t, body, "+")
	decoded, err := url.PathUnescape(body)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+1 (617) 642-8741", FormatPhone("16176428741"))
	assert.Equal(t, "+1 (617) 642-8741", FormatPhone("+1-617-642-8741"))
	assert.Equal(t, "(617) 642-8741", FormatPhone("617.642.8741"))
	assert.Equal(t, "+44 20 7946 0958", FormatPhone("+44 20 7946 0958"))
	assert.Equal(t, "", FormatPhone(""))
}

func TestResultCustomization(t *testing.T) {
	res := &model.Result{Kind: model.ResultROI, ROI: &model.ROIResult{
		MonthlyIncrease: 65000,
		AnnualIncrease:  780000,
		ROIPercent:      25900,
	}}
	msg := Render(ResultTemplate(res.Kind), ResultCustomization(res, &model.Lead{Email: "a@b.co"}, "Samantha"))
	assert.Equal(t, "Samantha! Just used your ROI calculator. With your system, I could add $65,000 per month "+
		"($780,000 annually) with 25,900% ROI! I need this transformation. Let's talk! 💰", msg)

	quiz := &model.Result{Kind: model.ResultQuiz, Quiz: &model.QuizResult{Score: 21, MaxScore: 35, Level: "Glowing Ember", Recommendation: "Go."}}
	msg = Render(ResultTemplate(quiz.Kind), ResultCustomization(quiz, nil, "Samantha"))
	assert.True(t, strings.HasPrefix(msg, "Samantha! I just took the Constellation Score quiz and got 21/35 (Glowing Ember). Go. "))
	assert.NotContains(t, msg, "[")
}

func newDispatcher() (*Dispatcher, *analytics.Recorder) {
	rec := &analytics.Recorder{}
	return NewDispatcher("", "", analytics.NewFunnel(rec, nil), zap.NewNop()), rec
}

func TestDispatchMobileDeepLink(t *testing.T) {
	d, rec := newDispatcher()
	out := d.Dispatch(Request{
		Template:      "Got [SCORE]",
		Customization: map[string]string{"score": "21"},
		UserAgent:     iphoneAgent,
		Context:       "quiz_results",
	})

	assert.Equal(t, ModeDeepLink, out.Mode)
	assert.Equal(t, "sms:16176428741&body=Got%2021", out.Link)
	assert.Equal(t, "Got 21", out.Message)
	assert.Equal(t, []string{"sms_button_clicked", "sms_launched"}, rec.Names())
}

func TestDispatchDesktopFallback(t *testing.T) {
	d, rec := newDispatcher()
	out := d.Dispatch(Request{UserAgent: desktopAgent})

	assert.Equal(t, ModeFallback, out.Mode)
	assert.Empty(t, out.Link)
	assert.Equal(t, DefaultMessage, out.Message)
	assert.Equal(t, "+1 (617) 642-8741", out.DisplayPhone)
	assert.Equal(t, []string{"sms_button_clicked", "desktop_sms_fallback_shown"}, rec.Names())
}

func TestDispatchBuildFailureFallsBack(t *testing.T) {
	d, rec := newDispatcher()
	out := d.Dispatch(Request{Phone: "n/a", UserAgent: androidAgent})

	assert.Equal(t, ModeFallback, out.Mode)
	assert.Equal(t, ErrNoDigits.Error(), out.Reason)
	assert.Equal(t, []string{"sms_button_clicked", "error_occurred", "sms_launched", "desktop_sms_fallback_shown"}, rec.Names())

	e, _ := rec.Find("sms_launched")
	assert.Equal(t, false, e.Properties["success"])
}

func TestPreviewEmitsNothing(t *testing.T) {
	d, rec := newDispatcher()

	mobile := d.Preview(Request{UserAgent: androidAgent, Template: "Hi [NAME]", Customization: map[string]string{"NAME": "Sam"}})
	assert.Equal(t, ModeDeepLink, mobile.Mode)
	assert.Equal(t, "Hi Sam", mobile.Message)
	assert.Contains(t, mobile.Link, "?body=Hi%20Sam")

	desktop := d.Preview(Request{UserAgent: desktopAgent})
	assert.Equal(t, ModeFallback, desktop.Mode)
	assert.Equal(t, "desktop", desktop.Reason)
	assert.Equal(t, DefaultMessage, desktop.Message)

	assert.Empty(t, rec.Events())
}
