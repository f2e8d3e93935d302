package service

import (
	"context"
	"errors"

	"funnelworks/internal/cache"
	"funnelworks/internal/flow"
	"funnelworks/internal/model"
	"funnelworks/internal/repository"
)

// ErrLeadsUnavailable is returned when no lead database is configured
var ErrLeadsUnavailable = errors.New("lead storage not configured")

const defaultLeadLimit = 100

// OperatorService serves the operator dashboard
type OperatorService struct {
	leadRepo repository.LeadRepo
	stats    cache.StatsCache
	catalog  *flow.Catalog
}

// NewOperatorService creates a new operator service. leadRepo may be nil.
func NewOperatorService(leadRepo repository.LeadRepo, stats cache.StatsCache, catalog *flow.Catalog) *OperatorService {
	return &OperatorService{
		leadRepo: leadRepo,
		stats:    stats,
		catalog:  catalog,
	}
}

// Leads lists captured leads, newest first
func (s *OperatorService) Leads(ctx context.Context, tool model.ToolID, limit int64) ([]*model.LeadRecord, error) {
	if s.leadRepo == nil {
		return nil, ErrLeadsUnavailable
	}
	if limit <= 0 || limit > 1000 {
		limit = defaultLeadLimit
	}
	leads, err := s.leadRepo.ListByTool(ctx, tool, limit)
	if err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []*model.LeadRecord{}
	}
	return leads, nil
}

// Stats returns funnel counters for a known tool
func (s *OperatorService) Stats(ctx context.Context, tool model.ToolID) (*model.ToolStats, error) {
	if _, ok := s.catalog.Get(tool); !ok {
		return nil, ErrUnknownTool
	}
	return s.stats.Get(ctx, tool)
}
