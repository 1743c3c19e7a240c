package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"gorm.io/gorm"
)

// StockFilter narrows ledger list queries.
type StockFilter struct {
	Item      string
	Category  string
	RequestID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// StockRepository persists the stock ledger. Rows are append-only: signed
// quantities are never rewritten, only descriptive fields may change.
type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// CreateBatch appends ledger rows atomically.
func (r *StockRepository) CreateBatch(ctx context.Context, rows []*domain.StockTransaction) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

func (r *StockRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StockTransaction, error) {
	var row domain.StockTransaction
	err := r.db.WithContext(ctx).Preload("CreatedBy").First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *StockRepository) List(ctx context.Context, filter *StockFilter, page, pageSize int) ([]domain.StockTransaction, int64, error) {
	var rows []domain.StockTransaction
	var total int64

	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.StockTransaction{})
	query = applyStockFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("CreatedBy").
		Order("date DESC, created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&rows).Error
	return rows, total, err
}

// ListAll streams the full ledger for balance computation, oldest first.
func (r *StockRepository) ListAll(ctx context.Context) ([]domain.StockTransaction, error) {
	var rows []domain.StockTransaction
	err := r.db.WithContext(ctx).
		Order("date ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

func applyStockFilter(query *gorm.DB, filter *StockFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Item != "" {
		query = query.Where("LOWER(item) = LOWER(?)", filter.Item)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.RequestID != nil {
		query = query.Where("request_id = ?", *filter.RequestID)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	return query
}

// UpdateDescriptive edits descriptive columns of one ledger row. The signed
// quantity is deliberately not among the allowed updates.
func (r *StockRepository) UpdateDescriptive(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	for column := range updates {
		if column == "quantity" {
			return fmt.Errorf("ledger quantity is immutable")
		}
	}
	result := r.db.WithContext(ctx).Model(&domain.StockTransaction{}).
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

// ReplaceSnapshots atomically rewrites the cached balance table. The cache
// is never read as truth; it exists for reporting and is rebuilt from the
// ledger by the snapshot job.
func (r *StockRepository) ReplaceSnapshots(ctx context.Context, snapshots []domain.StockBalanceSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.StockBalanceSnapshot{}).Error; err != nil {
			return fmt.Errorf("failed to clear balance snapshots: %w", err)
		}
		if len(snapshots) == 0 {
			return nil
		}
		return tx.Create(&snapshots).Error
	})
}

// ListSnapshots returns the cached balance rows ordered by item name.
func (r *StockRepository) ListSnapshots(ctx context.Context) ([]domain.StockBalanceSnapshot, error) {
	var snapshots []domain.StockBalanceSnapshot
	err := r.db.WithContext(ctx).Order("item ASC").Find(&snapshots).Error
	return snapshots, err
}
