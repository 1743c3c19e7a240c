package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/internal/service"
	"github.com/sitesupply/procurement-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newNumberSequenceService(db *gorm.DB) *service.NumberSequenceService {
	return service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), zap.NewNop())
}

func TestNumberSequenceService_GenerateRequestNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNumberSequenceService(db)
	ctx := context.Background()

	year := time.Now().UTC().Year()

	first, err := svc.GenerateRequestNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.FormatRequestNumber(year, 1), first)

	second, err := svc.GenerateRequestNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.FormatRequestNumber(year, 2), second)
}

func TestFormatRequestNumber(t *testing.T) {
	assert.Equal(t, "REQ-2026-0001", service.FormatRequestNumber(2026, 1))
	assert.Equal(t, "REQ-2026-0042", service.FormatRequestNumber(2026, 42))
	assert.Equal(t, "REQ-2027-12345", service.FormatRequestNumber(2027, 12345))
}

// The sequence restarts at 1 each January. Numbers from consecutive years
// must still differ so the unique request_number column never rejects the
// first request of a new year.
func TestRequestNumber_YearRollover(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	thisYear, err := repo.NextNumber(ctx, "material_request", 2026)
	require.NoError(t, err)
	nextYear, err := repo.NextNumber(ctx, "material_request", 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, thisYear)
	assert.Equal(t, 1, nextYear)

	assert.NotEqual(t,
		service.FormatRequestNumber(2026, thisYear),
		service.FormatRequestNumber(2027, nextYear),
	)

	// Both formatted numbers coexist in the requests table.
	project := testutil.CreateTestProject(t, db, "Rollover Site")
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	for _, year := range []int{2026, 2027} {
		req := &domain.MaterialRequest{
			RequestNumber: service.FormatRequestNumber(year, 1),
			ProjectID:     project.ID,
			RequesterID:   requester.ID,
			Priority:      domain.PriorityNormal,
			Status:        domain.RequestStatusDraft,
		}
		require.NoError(t, db.WithContext(ctx).Create(req).Error)
	}

	var count int64
	require.NoError(t, db.Model(&domain.MaterialRequest{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestNumberSequenceService_CurrentSequence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNumberSequenceService(db)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	current, err := svc.CurrentSequence(ctx, year)
	require.NoError(t, err)
	assert.Zero(t, current, "no numbers issued yet")

	_, err = svc.GenerateRequestNumber(ctx)
	require.NoError(t, err)

	current, err = svc.CurrentSequence(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, 1, current)

	// Another year starts from scratch.
	other, err := svc.CurrentSequence(ctx, year-1)
	require.NoError(t, err)
	assert.Zero(t, other)
}
