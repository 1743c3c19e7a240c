package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"gorm.io/gorm"
)

// ApprovalRepository persists approval decisions. The table is append-only;
// no update or delete methods exist on purpose.
type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) Create(ctx context.Context, approval *domain.Approval) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

func (r *ApprovalRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Approval, error) {
	var approvals []domain.Approval
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&approvals).Error
	return approvals, err
}
