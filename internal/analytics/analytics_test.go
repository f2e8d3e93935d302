package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"funnelworks/internal/model"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestNewWithoutKeyIsNop(t *testing.T) {
	tr := New(PostHogConfig{APIKey: "  "}, zap.NewNop())
	_, ok := tr.(Nop)
	assert.True(t, ok)
	tr.Capture(Event{Name: "x"})
	assert.NoError(t, tr.Close())
}

func TestTrackerFuncSwallowsPanics(t *testing.T) {
	tr := TrackerFunc(func(Event) { panic("boom") })
	assert.NotPanics(t, func() { tr.Capture(Event{Name: "x"}) })
}

func TestMultiFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b}
	m.Capture(Event{Name: "hero_cta_clicked"})
	assert.Equal(t, []string{"hero_cta_clicked"}, a.Names())
	assert.Equal(t, []string{"hero_cta_clicked"}, b.Names())
}

type captured struct {
	mu      sync.Mutex
	batches []batchRequest
}

func (c *captured) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		c.mu.Lock()
		c.batches = append(c.batches, req)
		c.mu.Unlock()
		w.WriteHeader(status)
	}
}

func (c *captured) events() []batchedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []batchedEvent
	for _, b := range c.batches {
		out = append(out, b.Batch...)
	}
	return out
}

func noKeepAlive() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: time.Second}
}

func TestPostHogDeliversOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got captured
	srv := httptest.NewServer(got.handler(http.StatusOK))
	defer srv.Close()

	p := NewPostHog(PostHogConfig{
		APIKey:        "phc_test",
		Host:          srv.URL,
		FlushInterval: time.Hour,
		HTTPClient:    noKeepAlive(),
	}, zap.NewNop())

	p.Capture(Event{Name: "tool_started", DistinctID: "v1", Properties: Props{"tool_name": "constellation_score"}})
	p.Capture(Event{Name: "tool_completed", DistinctID: "v1"})
	require.NoError(t, p.Close())

	events := got.events()
	require.Len(t, events, 2)
	assert.Equal(t, "tool_started", events[0].Event)
	assert.Equal(t, "v1", events[0].Properties["distinct_id"])
	assert.Equal(t, "constellation_score", events[0].Properties["tool_name"])
	assert.Equal(t, "phc_test", got.batches[0].APIKey)
	assert.EqualValues(t, 2, p.Sent())

	// capture after close is dropped, never panics
	assert.NotPanics(t, func() { p.Capture(Event{Name: "late"}) })
	require.NoError(t, p.Close())
}

func TestPostHogFlushesFullBatches(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got captured
	srv := httptest.NewServer(got.handler(http.StatusOK))
	defer srv.Close()

	p := NewPostHog(PostHogConfig{
		APIKey:        "k",
		Host:          srv.URL + "/",
		BatchSize:     2,
		FlushInterval: time.Hour,
		HTTPClient:    noKeepAlive(),
	}, zap.NewNop())

	for i := 0; i < 4; i++ {
		p.Capture(Event{Name: "e", DistinctID: "v"})
	}
	require.Eventually(t, func() bool { return len(got.events()) == 4 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, p.Close())
}

func TestPostHogFailureCountsDrops(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got captured
	srv := httptest.NewServer(got.handler(http.StatusInternalServerError))
	defer srv.Close()

	p := NewPostHog(PostHogConfig{
		APIKey:        "k",
		Host:          srv.URL,
		FlushInterval: time.Hour,
		HTTPClient:    noKeepAlive(),
	}, zap.NewNop())
	p.Capture(Event{Name: "e"})
	require.NoError(t, p.Close())

	assert.EqualValues(t, 0, p.Sent())
	assert.EqualValues(t, 1, p.Dropped())
}

func TestPostHogDropsWhenQueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPostHog(PostHogConfig{
		APIKey:        "k",
		Host:          srv.URL,
		QueueSize:     1,
		BatchSize:     1,
		FlushInterval: time.Hour,
		HTTPClient:    noKeepAlive(),
	}, zap.NewNop())

	start := time.Now()
	for i := 0; i < 50; i++ {
		p.Capture(Event{Name: "e"})
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.Greater(t, p.Dropped(), int64(0))

	close(block)
	require.NoError(t, p.Close())
}

func TestFunnelToolEvents(t *testing.T) {
	rec := &Recorder{}
	f := NewFunnel(rec, fixedClock)

	f.ToolStarted("v1", model.ToolConstellationScore)
	f.StepAnswered("v1", model.ToolConstellationScore, 0, model.Answer{Value: 3, Tag: "Good foundation, needs optimization"})
	f.LeadCaptured("v1", model.ToolConstellationScore, model.Lead{Email: "Ann@Example.COM", Phone: "(617) 642-8741"})
	f.ResultsViewed("v1", &model.Result{Kind: model.ResultQuiz, Quiz: &model.QuizResult{Score: 21, Level: "Glowing Ember"}})

	assert.Equal(t, []string{
		"constellation_quiz_started",
		"tool_started",
		"constellation_question_answered",
		"constellation_email_captured",
		"email_captured",
		"constellation_results_viewed",
	}, rec.Names())

	e, ok := rec.Find("email_captured")
	require.True(t, ok)
	assert.Equal(t, "example.com", e.Properties["email_domain"])
	assert.Equal(t, true, e.Properties["has_phone"])
	for _, ev := range rec.Events() {
		for _, v := range ev.Properties {
			if s, ok := v.(string); ok {
				assert.NotContains(t, strings.ToLower(s), "ann@", "email leaked in %s", ev.Name)
			}
		}
	}

	e, _ = rec.Find("constellation_question_answered")
	assert.Equal(t, 0, e.Properties["question_index"])
	assert.Equal(t, 3, e.Properties["answer_value"])
	assert.Equal(t, fixedNow, e.Timestamp)
}

func TestFunnelAbandonAndSMSEvents(t *testing.T) {
	rec := &Recorder{}
	f := NewFunnel(rec, fixedClock)

	f.ToolAbandoned("v1", model.ToolFunnelAlchemy, 2, 5)
	f.SMSButtonClicked("v1", strings.Repeat("é", 150), "quiz_results", true)
	f.ErrorOccurred("v1", errors.New("no digits"), "sms_dispatch")

	e, _ := rec.Find("tool_abandoned")
	assert.InDelta(t, 40.0, e.Properties["completion_percentage"], 1e-9)

	e, _ = rec.Find("sms_button_clicked")
	assert.Len(t, []rune(e.Properties["message_preview"].(string)), 100)

	e, _ = rec.Find("error_occurred")
	assert.Equal(t, "no digits", e.Properties["error_message"])
}

func TestFunnelClientWhitelist(t *testing.T) {
	rec := &Recorder{}
	f := NewFunnel(rec, fixedClock)

	assert.True(t, f.Client(model.ClientEvent{Name: "hero_section_viewed", DistinctID: "v"}))
	assert.False(t, f.Client(model.ClientEvent{Name: "tool_completed", DistinctID: "v"}))
	assert.Equal(t, []string{"hero_section_viewed"}, rec.Names())
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "x.io", EmailDomain("a@x.io"))
	assert.Equal(t, "", EmailDomain("nope"))
	assert.Equal(t, "", EmailDomain("trailing@"))
}
