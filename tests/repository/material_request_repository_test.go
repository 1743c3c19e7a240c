package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMaterialRequestRepository_UpdateStatusIf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMaterialRequestRepository(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")
	ctx := context.Background()

	request := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)

	err := repo.UpdateStatusIf(ctx, request.ID, domain.RequestStatusSubmitted, domain.RequestStatusApproved)
	require.NoError(t, err)

	// The guard no longer holds, so a second transition fails without
	// touching the row.
	err = repo.UpdateStatusIf(ctx, request.ID, domain.RequestStatusSubmitted, domain.RequestStatusRejected)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var reloaded domain.MaterialRequest
	require.NoError(t, db.First(&reloaded, "id = ?", request.ID).Error)
	assert.Equal(t, domain.RequestStatusApproved, reloaded.Status)
}

func TestMaterialRequestRepository_UpdateStatusIf_MissingRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMaterialRequestRepository(db)

	err := repo.UpdateStatusIf(context.Background(), uuid.New(), domain.RequestStatusDraft, domain.RequestStatusSubmitted)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMaterialRequestRepository_List_DanglingReferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMaterialRequestRepository(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")
	ctx := context.Background()

	testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)

	// Remove the joined rows; the request must still list, with empty
	// joined names for the mapper to fill.
	require.NoError(t, db.Delete(&domain.Project{}, "id = ?", project.ID).Error)
	require.NoError(t, db.Delete(&domain.User{}, "id = ?", requester.ID).Error)

	rows, total, err := repo.List(ctx, nil, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].ProjectName)
	assert.Empty(t, rows[0].RequesterName)
	assert.Equal(t, 1, rows[0].ItemCount)
}

func TestMaterialRequestRepository_Delete_RemovesChildren(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMaterialRequestRepository(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	project := testutil.CreateTestProject(t, db, "Tower B")
	ctx := context.Background()

	request := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)
	require.NoError(t, db.Create(&domain.Approval{
		RequestID: request.ID,
		UserID:    admin.ID,
		Action:    domain.ApprovalActionApproved,
	}).Error)

	require.NoError(t, repo.Delete(ctx, request.ID))

	var items, approvals int64
	require.NoError(t, db.Model(&domain.MaterialRequestItem{}).Where("request_id = ?", request.ID).Count(&items).Error)
	require.NoError(t, db.Model(&domain.Approval{}).Where("request_id = ?", request.ID).Count(&approvals).Error)
	assert.Zero(t, items)
	assert.Zero(t, approvals)
}

func TestMaterialRequestRepository_List_FilterCombination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMaterialRequestRepository(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	towerA := testutil.CreateTestProject(t, db, "Tower A")
	towerB := testutil.CreateTestProject(t, db, "Tower B")
	ctx := context.Background()

	testutil.CreateTestRequest(t, db, towerA.ID, requester.ID, domain.RequestStatusSubmitted)
	testutil.CreateTestRequest(t, db, towerA.ID, requester.ID, domain.RequestStatusDraft)
	testutil.CreateTestRequest(t, db, towerB.ID, requester.ID, domain.RequestStatusSubmitted)

	submitted := domain.RequestStatusSubmitted
	projectID := towerA.ID
	rows, total, err := repo.List(ctx, &repository.RequestFilter{
		Status:    &submitted,
		ProjectID: &projectID,
	}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, towerA.ID, rows[0].ProjectID)
	assert.Equal(t, domain.RequestStatusSubmitted, rows[0].Status)
}
