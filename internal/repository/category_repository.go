package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.MaterialCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaterialCategory, error) {
	var category domain.MaterialCategory
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.MaterialCategory{}).
		Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.MaterialCategory, error) {
	var categories []domain.MaterialCategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.MaterialCategory{}, "id = ?", id).Error
}
