package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/internal/service"
	"github.com/sitesupply/procurement-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newCategoryService(db *gorm.DB) *service.CategoryService {
	return service.NewCategoryService(repository.NewCategoryRepository(db), zap.NewNop())
}

func TestCategoryService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCategoryService(db)

	dto, err := svc.Create(context.Background(), &domain.CreateCategoryRequest{Name: "Ready Mix Concrete"})
	require.NoError(t, err)
	assert.Equal(t, "Ready Mix Concrete", dto.Name)
	assert.Equal(t, "ready_mix_concrete", dto.Slug)
}

func TestCategoryService_Create_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCategoryService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, &domain.CreateCategoryRequest{Name: "Ready Mix Concrete"})
	require.NoError(t, err)

	// A different spelling that normalizes to the same slug conflicts.
	_, err = svc.Create(ctx, &domain.CreateCategoryRequest{Name: "Ready  Mix  CONCRETE"})
	assert.ErrorIs(t, err, service.ErrDuplicateSlug)
}

func TestCategoryService_Create_BlankName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCategoryService(db)

	_, err := svc.Create(context.Background(), &domain.CreateCategoryRequest{Name: "   "})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestCategoryService_ListAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCategoryService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.CreateCategoryRequest{Name: "Steel"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &domain.CreateCategoryRequest{Name: "Cement"})
	require.NoError(t, err)

	categories, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Cement", categories[0].Name, "list is ordered by name")

	require.NoError(t, svc.Delete(ctx, created.ID))

	categories, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	err = svc.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
