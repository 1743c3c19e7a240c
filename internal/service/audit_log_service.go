package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/mapper"
	"github.com/sitesupply/procurement-api/internal/repository"
	"go.uber.org/zap"
)

// AuditLogService records mutations performed through the API.
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// LogEntry is the input for one audit row.
type LogEntry struct {
	Action     domain.AuditAction
	EntityType string
	EntityID   string
	StatusCode int
	RequestID  string
}

// Log writes one audit row, filling user and network fields from the
// request. Audit failures are logged but never fail the request that
// triggered them.
func (s *AuditLogService) Log(ctx context.Context, r *http.Request, entry LogEntry) {
	auditLog := &domain.AuditLog{
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Path:        r.URL.Path,
		Method:      r.Method,
		StatusCode:  entry.StatusCode,
		IPAddress:   clientIP(r),
		RequestID:   entry.RequestID,
		PerformedAt: time.Now().UTC(),
	}

	if userCtx, ok := auth.FromContext(ctx); ok && userCtx != nil {
		userID := userCtx.UserID
		auditLog.UserID = &userID
		auditLog.UserEmail = userCtx.Email
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.logger.Error("failed to write audit log",
			zap.String("path", auditLog.Path),
			zap.String("method", auditLog.Method),
			zap.Error(err),
		)
	}
}

// List returns paginated audit rows for the admin surface.
func (s *AuditLogService) List(ctx context.Context, filter *repository.AuditLogFilter, page, pageSize int) ([]domain.AuditLogDTO, int64, error) {
	logs, total, err := s.auditRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	dtos := make([]domain.AuditLogDTO, 0, len(logs))
	for i := range logs {
		dtos = append(dtos, mapper.ToAuditLogDTO(&logs[i]))
	}
	return dtos, total, nil
}

// Prune removes audit rows older than the retention window.
func (s *AuditLogService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	removed, err := s.auditRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit logs: %w", err)
	}
	if removed > 0 {
		s.logger.Info("pruned audit logs", zap.Int64("removed", removed))
	}
	return removed, nil
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
