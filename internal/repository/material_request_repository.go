package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"gorm.io/gorm"
)

// RequestSummary is a denormalized list row: the request plus the joined
// project and requester names and line-item count. Dangling foreign keys
// surface as empty strings and are mapped to placeholder names upstream.
type RequestSummary struct {
	domain.MaterialRequest
	ProjectName          string `gorm:"column:project_name"`
	RequesterName        string `gorm:"column:requester_name"`
	RequesterDesignation string `gorm:"column:requester_designation"`
	ItemCount            int    `gorm:"column:item_count"`
}

// RequestFilter narrows list queries.
type RequestFilter struct {
	Status      *domain.RequestStatus
	Priority    *domain.RequestPriority
	ProjectID   *uuid.UUID
	RequesterID *uuid.UUID
}

type MaterialRequestRepository struct {
	db *gorm.DB
}

func NewMaterialRequestRepository(db *gorm.DB) *MaterialRequestRepository {
	return &MaterialRequestRepository{db: db}
}

// Create persists the request together with its line items in one
// transaction. A failing item insert rolls back the parent.
func (r *MaterialRequestRepository) Create(ctx context.Context, request *domain.MaterialRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(request).Error
	})
}

func (r *MaterialRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaterialRequest, error) {
	var request domain.MaterialRequest
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Approvals.User").
		Preload("Project").
		Preload("Requester").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns denormalized summaries ordered by creation time, newest
// first. Deleted projects and requesters join as empty names.
func (r *MaterialRequestRepository) List(ctx context.Context, filter *RequestFilter, page, pageSize int) ([]RequestSummary, int64, error) {
	var rows []RequestSummary
	var total int64

	page, pageSize = NormalizePagination(page, pageSize)

	base := r.db.WithContext(ctx).Model(&domain.MaterialRequest{})
	base = applyRequestFilter(base, filter)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Model(&domain.MaterialRequest{}).
		Select(`material_requests.*,
			projects.name AS project_name,
			users.display_name AS requester_name,
			users.designation AS requester_designation,
			(SELECT COUNT(*) FROM material_request_items
				WHERE material_request_items.request_id = material_requests.id) AS item_count`).
		Joins("LEFT JOIN projects ON projects.id = material_requests.project_id").
		Joins("LEFT JOIN users ON users.id = material_requests.requester_id")
	query = applyRequestFilter(query, filter)

	offset := (page - 1) * pageSize
	err := query.Order("material_requests.created_at DESC").
		Offset(offset).Limit(pageSize).
		Scan(&rows).Error
	return rows, total, err
}

func applyRequestFilter(query *gorm.DB, filter *RequestFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Status != nil {
		query = query.Where("material_requests.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("material_requests.priority = ?", *filter.Priority)
	}
	if filter.ProjectID != nil {
		query = query.Where("material_requests.project_id = ?", *filter.ProjectID)
	}
	if filter.RequesterID != nil {
		query = query.Where("material_requests.requester_id = ?", *filter.RequesterID)
	}
	return query
}

// UpdateStatusIf transitions status only when the current status matches
// from. Returns gorm.ErrRecordNotFound when the guard does not hold, so a
// concurrent second transition fails instead of silently rewriting.
func (r *MaterialRequestRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.MaterialRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return fmt.Errorf("failed to update request status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateHeader updates the editable header fields without touching status
// or items.
func (r *MaterialRequestRepository) UpdateHeader(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&domain.MaterialRequest{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceItems swaps the full line-item set inside one transaction.
func (r *MaterialRequestRepository) ReplaceItems(ctx context.Context, requestID uuid.UUID, items []domain.MaterialRequestItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.MaterialRequestItem{}, "request_id = ?", requestID).Error; err != nil {
			return fmt.Errorf("failed to clear request items: %w", err)
		}
		for i := range items {
			items[i].RequestID = requestID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// Delete removes the request; items and approvals cascade.
func (r *MaterialRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.MaterialRequestItem{}, "request_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Approval{}, "request_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.MaterialRequest{}, "id = ?", id).Error
	})
}

// CountByStatus groups request counts by status, optionally scoped to one
// requester for non-admin dashboards.
func (r *MaterialRequestRepository) CountByStatus(ctx context.Context, requesterID *uuid.UUID) (map[domain.RequestStatus]int, error) {
	type statusCount struct {
		Status domain.RequestStatus
		Count  int
	}
	var rows []statusCount

	query := r.db.WithContext(ctx).Model(&domain.MaterialRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if requesterID != nil {
		query = query.Where("requester_id = ?", *requesterID)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.RequestStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountUrgentOpen counts urgent requests that are still in flight, meaning
// draft or submitted.
func (r *MaterialRequestRepository) CountUrgentOpen(ctx context.Context, requesterID *uuid.UUID) (int, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.MaterialRequest{}).
		Where("priority = ?", domain.PriorityUrgent).
		Where("status IN ?", []domain.RequestStatus{domain.RequestStatusDraft, domain.RequestStatusSubmitted})
	if requesterID != nil {
		query = query.Where("requester_id = ?", *requesterID)
	}
	err := query.Count(&count).Error
	return int(count), err
}
