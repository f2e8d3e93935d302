package flow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"funnelworks/internal/model"
	"funnelworks/internal/scoring"
)

var (
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	ErrStepMismatch      = errors.New("answer does not target the current step")
	ErrUnknownOption     = errors.New("option index out of range")
	ErrEmailRequired     = errors.New("email is required")
	ErrWrongTool         = errors.New("session belongs to a different tool")
)

// AdvanceDelay is the cosmetic pause clients show before the next step
const AdvanceDelay = 300 * time.Millisecond

// Transition describes the effect of one operation on a session
type Transition struct {
	From    model.SessionState
	To      model.SessionState
	Changed bool // false for idempotent repeats
}

// Entered reports whether the operation moved the session into state
func (t Transition) Entered(state model.SessionState) bool {
	return t.Changed && t.From != state && t.To == state
}

// Machine applies flow operations to sessions of one tool.
// It does not lock; callers serialise access per session.
type Machine struct {
	def *Definition
}

// NewMachine creates a flow machine for a tool definition
func NewMachine(def *Definition) *Machine {
	return &Machine{def: def}
}

// Definition returns the tool definition driving the machine
func (m *Machine) Definition() *Definition {
	return m.def
}

// Start creates a fresh session at the first step
func (m *Machine) Start(id string, now time.Time) *model.ToolSession {
	return &model.ToolSession{
		ID:        id,
		ToolID:    m.def.ToolID,
		State:     model.StateAsking,
		StepIndex: 0,
		Answers:   make(map[string]model.Answer),
		StartedAt: now,
		UpdatedAt: now,
	}
}

func (m *Machine) check(s *model.ToolSession) error {
	if s.ToolID != m.def.ToolID {
		return fmt.Errorf("%w: %s", ErrWrongTool, s.ToolID)
	}
	return nil
}

// Answer records the chosen option for the current step and advances.
// After the last step the session moves to the lead gate.
func (m *Machine) Answer(s *model.ToolSession, stepID string, optionIndex int, now time.Time) (Transition, error) {
	if err := m.check(s); err != nil {
		return Transition{}, err
	}
	if s.State != model.StateAsking || m.def.InputBased {
		return Transition{}, fmt.Errorf("%w: answer in %s", ErrInvalidTransition, s.State)
	}
	step := m.def.Steps[s.StepIndex]
	if step.ID != stepID {
		return Transition{}, fmt.Errorf("%w: got %q, current %q", ErrStepMismatch, stepID, step.ID)
	}
	if optionIndex < 0 || optionIndex >= len(step.Options) {
		return Transition{}, fmt.Errorf("%w: %d", ErrUnknownOption, optionIndex)
	}

	opt := step.Options[optionIndex]
	if s.Answers == nil {
		s.Answers = make(map[string]model.Answer)
	}
	s.Answers[step.ID] = model.Answer{
		StepID:      step.ID,
		OptionIndex: optionIndex,
		Value:       opt.Value,
		Tag:         opt.Tag,
		Severity:    opt.Severity,
		AnsweredAt:  now,
	}

	tr := Transition{From: s.State, To: s.State, Changed: true}
	if s.StepIndex < len(m.def.Steps)-1 {
		s.StepIndex++
	} else {
		s.State = model.StateCapturingLead
		tr.To = s.State
	}
	s.UpdatedAt = now
	return tr, nil
}

// Back returns to the previous step, keeping every recorded answer
func (m *Machine) Back(s *model.ToolSession, now time.Time) (Transition, error) {
	if err := m.check(s); err != nil {
		return Transition{}, err
	}
	if s.State != model.StateAsking || s.StepIndex == 0 {
		return Transition{}, fmt.Errorf("%w: back from %s(%d)", ErrInvalidTransition, s.State, s.StepIndex)
	}
	s.StepIndex--
	s.UpdatedAt = now
	return Transition{From: s.State, To: s.State, Changed: true}, nil
}

// SubmitInputs stores validated calculator inputs and moves to the lead gate
func (m *Machine) SubmitInputs(s *model.ToolSession, in model.ROIInputs, now time.Time) (Transition, error) {
	if err := m.check(s); err != nil {
		return Transition{}, err
	}
	if !m.def.InputBased || s.State != model.StateAsking {
		return Transition{}, fmt.Errorf("%w: inputs in %s", ErrInvalidTransition, s.State)
	}
	if err := scoring.ValidateROIInputs(in); err != nil {
		return Transition{}, err
	}
	trial := *s
	trial.Inputs = &in
	if _, err := m.def.Score(&trial); err != nil {
		return Transition{}, err
	}
	s.Inputs = &in
	s.State = model.StateCapturingLead
	s.UpdatedAt = now
	return Transition{From: model.StateAsking, To: s.State, Changed: true}, nil
}

// SubmitLead passes the gate: it stores the lead, scores the session and shows results.
// A repeat in the results state is a no-op reporting Changed=false.
func (m *Machine) SubmitLead(s *model.ToolSession, lead model.Lead, now time.Time) (Transition, error) {
	if err := m.check(s); err != nil {
		return Transition{}, err
	}
	if s.State == model.StateShowingResults {
		return Transition{From: s.State, To: s.State}, nil
	}
	if s.State != model.StateCapturingLead {
		return Transition{}, fmt.Errorf("%w: lead in %s", ErrInvalidTransition, s.State)
	}
	if strings.TrimSpace(lead.Email) == "" {
		return Transition{}, ErrEmailRequired
	}

	res, err := m.def.Score(s)
	if err != nil {
		return Transition{}, fmt.Errorf("score session: %w", err)
	}

	lead.Email = strings.TrimSpace(lead.Email)
	s.Lead = &lead
	s.Result = res
	s.State = model.StateShowingResults
	s.UpdatedAt = now
	return Transition{From: model.StateCapturingLead, To: s.State, Changed: true}, nil
}

// Progress is the percent of steps reached. Outside asking it is 100;
// input-driven tools report 0 while asking.
func (m *Machine) Progress(s *model.ToolSession) float64 {
	if s.State != model.StateAsking {
		return 100
	}
	if m.def.InputBased || len(m.def.Steps) == 0 {
		return 0
	}
	return float64(s.StepIndex+1) / float64(len(m.def.Steps)) * 100
}

// CompletedSteps counts screens finished before the lead gate
func (m *Machine) CompletedSteps(s *model.ToolSession) int {
	if s.State != model.StateAsking {
		return m.def.TotalSteps()
	}
	if m.def.InputBased {
		return 0
	}
	return s.StepIndex
}

// CurrentStep returns the step being asked, or nil
func (m *Machine) CurrentStep(s *model.ToolSession) *model.Step {
	if s.State != model.StateAsking || m.def.InputBased || s.StepIndex >= len(m.def.Steps) {
		return nil
	}
	step := m.def.Steps[s.StepIndex]
	return &step
}

// View projects a session for clients
func (m *Machine) View(s *model.ToolSession) *model.SessionView {
	v := &model.SessionView{
		SessionID:  s.ID,
		ToolID:     s.ToolID,
		State:      s.State,
		StepIndex:  s.StepIndex,
		TotalSteps: m.def.TotalSteps(),
		Progress:   m.Progress(s),
		Step:       m.CurrentStep(s),
		Answers:    s.Answers,
		Result:     s.Result,
	}
	if !m.def.InputBased && s.State != model.StateShowingResults {
		v.AdvanceDelayMs = int(AdvanceDelay / time.Millisecond)
	}
	return v
}

// StepTags maps step ids to the recorded insight or diagnosis
func StepTags(s *model.ToolSession) map[string]string {
	tags := make(map[string]string, len(s.Answers))
	for id, a := range s.Answers {
		tags[id] = a.Tag
	}
	return tags
}
