package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"funnelworks/internal/analytics"
	"funnelworks/internal/cache"
	"funnelworks/internal/cta"
	"funnelworks/internal/flow"
	"funnelworks/internal/model"
	"funnelworks/internal/telemetry"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrSessionNotFound = cache.ErrSessionNotFound

	errSessionFinished = errors.New("session already finished")
)

// ToolService runs tool sessions through the shared flow
type ToolService struct {
	catalog     *flow.Catalog
	sessions    cache.SessionCache
	stats       cache.StatsCache
	sink        CompletionSink
	funnel      *analytics.Funnel
	authSvc     *AuthService
	logger      *zap.Logger
	tracer      trace.Tracer
	now         func() time.Time
	broadcaster Broadcaster
}

// NewToolService creates a new tool service
func NewToolService(
	catalog *flow.Catalog,
	sessions cache.SessionCache,
	stats cache.StatsCache,
	sink CompletionSink,
	funnel *analytics.Funnel,
	authSvc *AuthService,
	logger *zap.Logger,
) *ToolService {
	return &ToolService{
		catalog:  catalog,
		sessions: sessions,
		stats:    stats,
		sink:     sink,
		funnel:   funnel,
		authSvc:  authSvc,
		logger:   logger,
		tracer:   telemetry.Tracer(),
		now:      time.Now,
	}
}

// SetBroadcaster sets the broadcaster for the operator feed
func (s *ToolService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock replaces the time source
func (s *ToolService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ToolService) broadcast(msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToOperators(msgType, payload)
	}
}

// Tools lists the catalog
func (s *ToolService) Tools() []model.ToolInfo {
	return s.catalog.List()
}

func (s *ToolService) machine(tool model.ToolID) (*flow.Machine, error) {
	def, ok := s.catalog.Get(tool)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, tool)
	}
	return flow.NewMachine(def), nil
}

func (s *ToolService) span(ctx context.Context, name, sessionID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "tool."+name, trace.WithAttributes(attribute.String("session.id", sessionID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Start opens a session for a tool and issues its token
func (s *ToolService) Start(ctx context.Context, tool model.ToolID, userAgent string) (resp *model.StartSessionResponse, err error) {
	ctx, span := s.span(ctx, "start", "")
	defer func() { endSpan(span, err) }()

	m, err := s.machine(tool)
	if err != nil {
		return nil, err
	}

	id := "ts_" + uuid.New().String()[:8]
	sess := m.Start(id, s.now())
	sess.UserAgent = userAgent
	span.SetAttributes(attribute.String("session.id", id), attribute.String("tool.id", string(tool)))

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	token, err := s.authSvc.GenerateSessionToken(id, tool)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	if err := s.stats.IncrStarted(ctx, tool); err != nil {
		s.logger.Warn("stats update failed", zap.String("tool", string(tool)), zap.Error(err))
	}
	s.funnel.ToolStarted(id, tool)
	s.broadcast(MsgSessionStarted, map[string]interface{}{
		"sessionId": id,
		"toolId":    tool,
	})

	return &model.StartSessionResponse{
		SessionID: id,
		Token:     token,
		View:      m.View(sess),
	}, nil
}

// Get returns the client view of a session
func (s *ToolService) Get(ctx context.Context, id string) (*model.SessionView, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	m, err := s.machine(sess.ToolID)
	if err != nil {
		return nil, err
	}
	return m.View(sess), nil
}

// Session returns the raw session, or ErrSessionNotFound
func (s *ToolService) Session(ctx context.Context, id string) (*model.ToolSession, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

type opFunc func(m *flow.Machine, sess *model.ToolSession) (flow.Transition, error)

// apply runs op atomically against the stored session. Side effects belong to callers
// and run only after the write commits.
func (s *ToolService) apply(ctx context.Context, id string, op opFunc) (*model.ToolSession, *flow.Machine, flow.Transition, error) {
	var (
		m  *flow.Machine
		tr flow.Transition
	)
	sess, err := s.sessions.Update(ctx, id, func(sess *model.ToolSession) error {
		var err error
		if m, err = s.machine(sess.ToolID); err != nil {
			return err
		}
		tr, err = op(m, sess)
		return err
	})
	if err != nil {
		return nil, nil, flow.Transition{}, err
	}
	return sess, m, tr, nil
}

// Answer records an option for the current step
func (s *ToolService) Answer(ctx context.Context, id string, req model.AnswerRequest) (view *model.SessionView, err error) {
	ctx, span := s.span(ctx, "answer", id)
	defer func() { endSpan(span, err) }()

	var stepIndex int
	sess, m, tr, err := s.apply(ctx, id, func(m *flow.Machine, sess *model.ToolSession) (flow.Transition, error) {
		stepIndex = sess.StepIndex
		return m.Answer(sess, req.StepID, req.OptionIndex, s.now())
	})
	if err != nil {
		return nil, err
	}

	if tr.Changed {
		s.funnel.StepAnswered(sess.ID, sess.ToolID, stepIndex, sess.Answers[req.StepID])
		s.broadcast(MsgSessionProgress, map[string]interface{}{
			"sessionId": sess.ID,
			"toolId":    sess.ToolID,
			"state":     sess.State,
			"progress":  m.Progress(sess),
		})
	}
	return m.View(sess), nil
}

// Back returns to the previous step
func (s *ToolService) Back(ctx context.Context, id string) (*model.SessionView, error) {
	sess, m, _, err := s.apply(ctx, id, func(m *flow.Machine, sess *model.ToolSession) (flow.Transition, error) {
		return m.Back(sess, s.now())
	})
	if err != nil {
		return nil, err
	}
	return m.View(sess), nil
}

// SubmitInputs stores calculator inputs and moves to the lead gate
func (s *ToolService) SubmitInputs(ctx context.Context, id string, in model.ROIInputs) (view *model.SessionView, err error) {
	ctx, span := s.span(ctx, "inputs", id)
	defer func() { endSpan(span, err) }()

	sess, m, tr, err := s.apply(ctx, id, func(m *flow.Machine, sess *model.ToolSession) (flow.Transition, error) {
		return m.SubmitInputs(sess, in, s.now())
	})
	if err != nil {
		return nil, err
	}
	if tr.Changed {
		s.broadcast(MsgSessionProgress, map[string]interface{}{
			"sessionId": sess.ID,
			"toolId":    sess.ToolID,
			"state":     sess.State,
			"progress":  m.Progress(sess),
		})
	}
	return m.View(sess), nil
}

// SubmitLead passes the lead gate and reveals results.
// Repeats after results are shown return the same view without side effects.
func (s *ToolService) SubmitLead(ctx context.Context, id string, req model.LeadRequest) (view *model.SessionView, err error) {
	ctx, span := s.span(ctx, "lead", id)
	defer func() { endSpan(span, err) }()

	lead := model.Lead{Email: req.Email, Phone: cta.FormatPhone(req.Phone)}
	sess, m, tr, err := s.apply(ctx, id, func(m *flow.Machine, sess *model.ToolSession) (flow.Transition, error) {
		return m.SubmitLead(sess, lead, s.now())
	})
	if err != nil {
		return nil, err
	}

	if tr.Entered(model.StateShowingResults) {
		s.complete(ctx, sess)
	}
	return m.View(sess), nil
}

func (s *ToolService) complete(ctx context.Context, sess *model.ToolSession) {
	record := &model.LeadRecord{
		ID:          "ld_" + uuid.New().String()[:8],
		SessionID:   sess.ID,
		ToolID:      sess.ToolID,
		Email:       sess.Lead.Email,
		EmailDomain: analytics.EmailDomain(sess.Lead.Email),
		Phone:       sess.Lead.Phone,
		Result:      sess.Result,
		StepTags:    flow.StepTags(sess),
		CompletedAt: sess.UpdatedAt,
	}

	if err := s.sink.Complete(ctx, record); err != nil {
		s.logger.Error("lead completion failed", zap.String("session", sess.ID), zap.Error(err))
		s.funnel.ErrorOccurred(sess.ID, err, "lead_completion")
	}

	outcome := sess.Result.Outcome()
	if err := s.stats.IncrCompleted(ctx, sess.ToolID, outcome); err != nil {
		s.logger.Warn("stats update failed", zap.String("tool", string(sess.ToolID)), zap.Error(err))
	}

	s.funnel.LeadCaptured(sess.ID, sess.ToolID, *sess.Lead)
	s.funnel.ResultsViewed(sess.ID, sess.Result)
	s.funnel.ToolCompleted(sess.ID, sess.ToolID, CompletionData(sess))

	s.broadcast(MsgLeadCaptured, map[string]interface{}{
		"sessionId":   sess.ID,
		"toolId":      sess.ToolID,
		"emailDomain": record.EmailDomain,
		"hasPhone":    record.Phone != "",
		"outcome":     outcome,
	})
}

// CompletionData shapes the per-tool completion payload
func CompletionData(sess *model.ToolSession) analytics.Props {
	data := analytics.Props{}
	if sess.Lead != nil {
		data["email"] = sess.Lead.Email
		data["phone"] = sess.Lead.Phone
	}
	res := sess.Result
	if res == nil {
		return data
	}

	switch res.Kind {
	case model.ResultQuiz:
		data["score"] = res.Quiz.Score
		data["insights"] = res.Quiz.Insights
	case model.ResultDiagnostic:
		data["leaks"] = res.Diagnostic.Leaks
		data["totalScore"] = res.Diagnostic.TotalScore
	case model.ResultROI:
		data["results"] = res.ROI
	}
	return data
}

// Abandon ends an unfinished session. Finished sessions are left alone.
func (s *ToolService) Abandon(ctx context.Context, id string) (err error) {
	ctx, span := s.span(ctx, "abandon", id)
	defer func() { endSpan(span, err) }()

	sess, err := s.sessions.Remove(ctx, id, func(cur *model.ToolSession) error {
		if cur.State == model.StateShowingResults {
			return errSessionFinished
		}
		return nil
	})
	switch {
	case errors.Is(err, errSessionFinished):
		return nil
	case err != nil:
		return err
	}
	m, err := s.machine(sess.ToolID)
	if err != nil {
		return err
	}

	completed, total := m.CompletedSteps(sess), m.Definition().TotalSteps()
	if err := s.stats.IncrAbandoned(ctx, sess.ToolID); err != nil {
		s.logger.Warn("stats update failed", zap.String("tool", string(sess.ToolID)), zap.Error(err))
	}
	s.funnel.ToolAbandoned(sess.ID, sess.ToolID, completed, total)
	s.broadcast(MsgSessionAbandoned, map[string]interface{}{
		"sessionId":     sess.ID,
		"toolId":        sess.ToolID,
		"stepCompleted": completed,
		"totalSteps":    total,
	})
	return nil
}
