package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/mapper"
	"github.com/sitesupply/procurement-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryService manages the material category list. Slugs are derived
// server-side from the name and are the uniqueness key.
type CategoryService struct {
	categoryRepo *repository.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo *repository.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// Create derives the slug and inserts the category. Names that normalize
// to an existing slug conflict.
func (s *CategoryService) Create(ctx context.Context, req *domain.CreateCategoryRequest) (*domain.CategoryDTO, error) {
	slug := domain.DeriveSlug(req.Name)
	if slug == "" {
		return nil, fmt.Errorf("%w: category name is empty", ErrInvalidInput)
	}

	exists, err := s.categoryRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSlug
	}

	category := &domain.MaterialCategory{
		Name: req.Name,
		Slug: slug,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("category created",
		zap.String("categoryID", category.ID.String()),
		zap.String("slug", slug),
	)

	dto := mapper.ToCategoryDTO(category)
	return &dto, nil
}

// List returns all categories ordered by name
func (s *CategoryService) List(ctx context.Context) ([]domain.CategoryDTO, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	dtos := make([]domain.CategoryDTO, 0, len(categories))
	for i := range categories {
		dtos = append(dtos, mapper.ToCategoryDTO(&categories[i]))
	}
	return dtos, nil
}

// Delete removes a category. Requests and ledger rows store the category
// name as text, so existing rows are unaffected.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load category: %w", err)
	}
	return s.categoryRepo.Delete(ctx, id)
}
