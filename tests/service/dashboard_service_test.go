package service_test

import (
	"context"
	"testing"

	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/internal/service"
	"github.com/sitesupply/procurement-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newDashboardService(db *gorm.DB) *service.DashboardService {
	return service.NewDashboardService(repository.NewMaterialRequestRepository(db), zap.NewNop())
}

func metricValue(t *testing.T, metrics []domain.DashboardMetricDTO, label string) int {
	t.Helper()
	for _, m := range metrics {
		if m.Label == label {
			return m.Value
		}
	}
	t.Fatalf("metric %q not found", label)
	return 0
}

func TestDashboardService_Metrics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDashboardService(db)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)
	testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusApproved)
	urgent := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)
	require.NoError(t, db.Model(&domain.MaterialRequest{}).
		Where("id = ?", urgent.ID).
		Update("priority", domain.PriorityUrgent).Error)

	metrics, err := svc.Metrics(context.Background(), testutil.UserContextFor(admin))
	require.NoError(t, err)
	require.Len(t, metrics, 4)

	assert.Equal(t, 3, metricValue(t, metrics, service.MetricTotalRequests))
	assert.Equal(t, 2, metricValue(t, metrics, service.MetricPendingApproval))
	assert.Equal(t, 1, metricValue(t, metrics, service.MetricApproved))
	assert.Equal(t, 1, metricValue(t, metrics, service.MetricUrgent))
}

func TestDashboardService_Metrics_EmptyDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDashboardService(db)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)

	metrics, err := svc.Metrics(context.Background(), testutil.UserContextFor(admin))
	require.NoError(t, err)
	require.Len(t, metrics, 4)
	for _, m := range metrics {
		assert.Zero(t, m.Value, m.Label)
	}
}

func TestDashboardService_Metrics_ScopedForNonAdmins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDashboardService(db)
	alice := testutil.CreateTestUser(t, db, domain.RoleUser)
	bob := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	testutil.CreateTestRequest(t, db, project.ID, alice.ID, domain.RequestStatusSubmitted)
	testutil.CreateTestRequest(t, db, project.ID, bob.ID, domain.RequestStatusSubmitted)
	testutil.CreateTestRequest(t, db, project.ID, bob.ID, domain.RequestStatusApproved)

	metrics, err := svc.Metrics(context.Background(), testutil.UserContextFor(alice))
	require.NoError(t, err)
	assert.Equal(t, 1, metricValue(t, metrics, service.MetricTotalRequests))
	assert.Equal(t, 0, metricValue(t, metrics, service.MetricApproved))
}
