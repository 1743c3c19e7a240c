package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/repository"
	"go.uber.org/zap"
)

// Dashboard card labels. Clients key off these strings, so they are part
// of the API contract.
const (
	MetricTotalRequests   = "Total Requests"
	MetricPendingApproval = "Pending Approval"
	MetricApproved        = "Approved"
	MetricUrgent          = "Urgent"
)

// DashboardService derives summary cards from the request collection.
type DashboardService struct {
	requestRepo *repository.MaterialRequestRepository
	logger      *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(requestRepo *repository.MaterialRequestRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// Metrics returns the four fixed cards. Admins see counts over all
// requests; other users see counts over their own. Counts with no
// matching rows are 0, and a failed count degrades to 0 rather than
// failing the whole dashboard.
func (s *DashboardService) Metrics(ctx context.Context, caller *auth.UserContext) ([]domain.DashboardMetricDTO, error) {
	var scope *uuid.UUID
	if !caller.IsAdmin() {
		callerID := caller.UserID
		scope = &callerID
	}

	counts, err := s.requestRepo.CountByStatus(ctx, scope)
	if err != nil {
		s.logger.Error("failed to count requests by status", zap.Error(err))
		counts = map[domain.RequestStatus]int{}
	}

	urgent, err := s.requestRepo.CountUrgentOpen(ctx, scope)
	if err != nil {
		s.logger.Error("failed to count urgent requests", zap.Error(err))
		urgent = 0
	}

	total := 0
	for _, count := range counts {
		total += count
	}

	return []domain.DashboardMetricDTO{
		{Label: MetricTotalRequests, Value: total, Trend: "neutral"},
		{Label: MetricPendingApproval, Value: counts[domain.RequestStatusSubmitted], Trend: "neutral"},
		{Label: MetricApproved, Value: counts[domain.RequestStatusApproved], Trend: "neutral"},
		{Label: MetricUrgent, Value: urgent, Trend: "neutral"},
	}, nil
}
