package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelworks/internal/model"
	"funnelworks/internal/scoring"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func machineFor(t *testing.T, id model.ToolID) *Machine {
	t.Helper()
	def, ok := NewCatalog(scoring.DefaultROIConfig()).Get(id)
	require.True(t, ok)
	return NewMachine(def)
}

func answerAll(t *testing.T, m *Machine, s *model.ToolSession, optionIndex int) {
	t.Helper()
	for _, step := range m.Definition().Steps {
		_, err := m.Answer(s, step.ID, optionIndex, now)
		require.NoError(t, err)
	}
}

func TestQuizFlowHappyPath(t *testing.T) {
	m := machineFor(t, model.ToolConstellationScore)
	s := m.Start("s1", now)

	assert.Equal(t, model.StateAsking, s.State)
	assert.InDelta(t, 100.0/7, m.Progress(s), 1e-9)

	last := m.Progress(s)
	for i, step := range m.Definition().Steps {
		tr, err := m.Answer(s, step.ID, 2, now)
		require.NoError(t, err)
		assert.True(t, tr.Changed)
		assert.GreaterOrEqual(t, m.Progress(s), last)
		last = m.Progress(s)
		if i < 6 {
			assert.Equal(t, model.StateAsking, s.State)
		}
	}
	assert.Equal(t, model.StateCapturingLead, s.State)
	assert.Equal(t, 100.0, m.Progress(s))

	tr, err := m.SubmitLead(s, model.Lead{Email: " a@b.co "}, now)
	require.NoError(t, err)
	assert.True(t, tr.Entered(model.StateShowingResults))
	require.NotNil(t, s.Result)
	assert.Equal(t, model.ResultQuiz, s.Result.Kind)
	assert.Equal(t, 21, s.Result.Quiz.Score)
	assert.Equal(t, "Glowing Ember", s.Result.Quiz.Level)
	assert.Equal(t, "a@b.co", s.Lead.Email)
}

func TestAnswerRejectsWrongStepAndOption(t *testing.T) {
	m := machineFor(t, model.ToolConstellationScore)
	s := m.Start("s1", now)

	_, err := m.Answer(s, "social_proof", 0, now)
	assert.ErrorIs(t, err, ErrStepMismatch)

	_, err = m.Answer(s, "funnel_performance", 5, now)
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, err = m.Answer(s, "funnel_performance", -1, now)
	assert.ErrorIs(t, err, ErrUnknownOption)

	assert.Equal(t, 0, s.StepIndex)
	assert.Empty(t, s.Answers)
}

func TestBackKeepsAnswersAndReanswerOverwrites(t *testing.T) {
	m := machineFor(t, model.ToolFunnelAlchemy)
	s := m.Start("s1", now)

	_, err := m.Back(s, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = m.Answer(s, "traffic_source", 0, now)
	require.NoError(t, err)
	_, err = m.Answer(s, "first_impression", 3, now)
	require.NoError(t, err)
	assert.Equal(t, 2, s.StepIndex)

	_, err = m.Back(s, now)
	require.NoError(t, err)
	assert.Equal(t, 1, s.StepIndex)
	assert.Len(t, s.Answers, 2)

	_, err = m.Answer(s, "first_impression", 1, now)
	require.NoError(t, err)
	assert.Equal(t, model.SeverityMinor, s.Answers["first_impression"].Severity)
	assert.Equal(t, model.SeverityNone, s.Answers["traffic_source"].Severity)
	assert.Equal(t, 2, s.StepIndex)
}

func TestBlankEmailLeavesStateUnchanged(t *testing.T) {
	m := machineFor(t, model.ToolFunnelAlchemy)
	s := m.Start("s1", now)
	answerAll(t, m, s, 0)

	for _, email := range []string{"", "   ", "\t"} {
		_, err := m.SubmitLead(s, model.Lead{Email: email, Phone: "5551234567"}, now)
		assert.ErrorIs(t, err, ErrEmailRequired)
		assert.Equal(t, model.StateCapturingLead, s.State)
		assert.Nil(t, s.Result)
		assert.Nil(t, s.Lead)
	}
}

func TestSubmitLeadIsIdempotentInResults(t *testing.T) {
	m := machineFor(t, model.ToolFunnelAlchemy)
	s := m.Start("s1", now)
	answerAll(t, m, s, 3)

	tr, err := m.SubmitLead(s, model.Lead{Email: "first@x.io"}, now)
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	result := s.Result

	tr, err = m.SubmitLead(s, model.Lead{Email: "second@x.io"}, now)
	require.NoError(t, err)
	assert.False(t, tr.Changed)
	assert.False(t, tr.Entered(model.StateShowingResults))
	assert.Same(t, result, s.Result)
	assert.Equal(t, "first@x.io", s.Lead.Email)
	assert.Equal(t, "Critical Condition", s.Result.Diagnostic.Health)
}

func TestSubmitLeadBeforeGateIsRejected(t *testing.T) {
	m := machineFor(t, model.ToolConstellationScore)
	s := m.Start("s1", now)
	_, err := m.SubmitLead(s, model.Lead{Email: "a@b.co"}, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestROIFlow(t *testing.T) {
	m := machineFor(t, model.ToolSpellbookROI)
	s := m.Start("s1", now)

	assert.Equal(t, 0.0, m.Progress(s))
	assert.Nil(t, m.CurrentStep(s))

	_, err := m.Answer(s, "anything", 0, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = m.SubmitInputs(s, model.ROIInputs{CurrentRevenue: 0, CurrentConversion: 2, TrafficVolume: 100, AverageValue: 50}, now)
	assert.ErrorIs(t, err, scoring.ErrInvalidInputs)
	assert.Equal(t, model.StateAsking, s.State)

	_, err = m.SubmitInputs(s, model.ROIInputs{CurrentRevenue: 1, CurrentConversion: 1, TrafficVolume: 1e300, AverageValue: 1e300}, now)
	assert.ErrorIs(t, err, scoring.ErrInvalidInputs)
	assert.Equal(t, model.StateAsking, s.State)
	assert.Nil(t, s.Inputs)

	tr, err := m.SubmitInputs(s, model.ROIInputs{CurrentRevenue: 1000, CurrentConversion: 2, TrafficVolume: 1000, AverageValue: 100}, now)
	require.NoError(t, err)
	assert.True(t, tr.Entered(model.StateCapturingLead))

	_, err = m.SubmitInputs(s, model.ROIInputs{CurrentRevenue: 1, CurrentConversion: 1, TrafficVolume: 1, AverageValue: 1}, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = m.SubmitLead(s, model.Lead{Email: "roi@x.io"}, now)
	require.NoError(t, err)
	require.Equal(t, model.ResultROI, s.Result.Kind)
	assert.InDelta(t, 65000, s.Result.ROI.MonthlyIncrease, 1e-9)
}

func TestMachineRejectsForeignSession(t *testing.T) {
	quiz := machineFor(t, model.ToolConstellationScore)
	roi := machineFor(t, model.ToolSpellbookROI)
	s := roi.Start("s1", now)

	_, err := quiz.Answer(s, "funnel_performance", 0, now)
	assert.ErrorIs(t, err, ErrWrongTool)
}

func TestViewAndCompletedSteps(t *testing.T) {
	m := machineFor(t, model.ToolConstellationScore)
	s := m.Start("s1", now)
	_, err := m.Answer(s, "funnel_performance", 0, now)
	require.NoError(t, err)

	v := m.View(s)
	assert.Equal(t, 7, v.TotalSteps)
	require.NotNil(t, v.Step)
	assert.Equal(t, "psychology_awareness", v.Step.ID)
	assert.Equal(t, 300, v.AdvanceDelayMs)
	assert.Equal(t, 1, m.CompletedSteps(s))

	assert.Equal(t, map[string]string{"funnel_performance": "Your funnel lacks psychological foundation"}, StepTags(s))
}

func TestCatalogList(t *testing.T) {
	list := NewCatalog(scoring.DefaultROIConfig()).List()
	require.Len(t, list, 3)
	assert.Equal(t, model.ToolConstellationScore, list[0].ID)
	assert.Equal(t, 7, list[0].StepCount)
	assert.Equal(t, model.ToolFunnelAlchemy, list[1].ID)
	assert.Equal(t, model.ToolSpellbookROI, list[2].ID)
	assert.True(t, list[2].InputBased)
}
