package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"funnelworks/internal/model"
	"funnelworks/internal/repository"
)

// CompletionSink receives every captured lead with its result
type CompletionSink interface {
	Complete(ctx context.Context, lead *model.LeadRecord) error
}

// RepoSink persists completions to the lead repository
type RepoSink struct {
	repo repository.LeadRepo
}

// NewRepoSink creates a sink backed by MongoDB
func NewRepoSink(repo repository.LeadRepo) *RepoSink {
	return &RepoSink{repo: repo}
}

func (s *RepoSink) Complete(ctx context.Context, lead *model.LeadRecord) error {
	return s.repo.Save(ctx, lead)
}

// LogSink only logs completions. Used when no database is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a log-only sink
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Complete(ctx context.Context, lead *model.LeadRecord) error {
	s.logger.Info("lead captured",
		zap.String("session", lead.SessionID),
		zap.String("tool", string(lead.ToolID)),
		zap.String("emailDomain", lead.EmailDomain),
		zap.Bool("hasPhone", lead.Phone != ""),
		zap.String("outcome", lead.Result.Outcome()))
	return nil
}

// MemorySink keeps completions in memory. Used by tests.
type MemorySink struct {
	mu    sync.Mutex
	leads []*model.LeadRecord
}

func (s *MemorySink) Complete(ctx context.Context, lead *model.LeadRecord) error {
	s.mu.Lock()
	s.leads = append(s.leads, lead)
	s.mu.Unlock()
	return nil
}

// Leads returns a copy of recorded completions
func (s *MemorySink) Leads() []*model.LeadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.LeadRecord, len(s.leads))
	copy(out, s.leads)
	return out
}
