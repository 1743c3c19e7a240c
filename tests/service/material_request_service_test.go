package service_test

import (
	"context"
	"testing"
	"time"

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

func newRequestService(db *gorm.DB) *service.MaterialRequestService {
	logger := zap.NewNop()
	numberSeq := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), logger)
	return service.NewMaterialRequestService(
		repository.NewMaterialRequestRepository(db),
		repository.NewApprovalRepository(db),
		repository.NewProjectRepository(db),
		numberSeq,
		logger,
	)
}

func validCreateRequest(projectID uuid.UUID) *domain.CreateMaterialRequestRequest {
	return &domain.CreateMaterialRequestRequest{
		ProjectID: projectID,
		Priority:  domain.PriorityNormal,
		Items: []domain.RequestItemInput{
			{Name: "TMT Bars 12mm", Quantity: 2.5, Unit: domain.UnitTon, Category: "Steel"},
		},
	}
}

func TestMaterialRequestService_Create_Submitted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	detail, err := svc.Create(context.Background(), requester.ID, validCreateRequest(project.ID))
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusSubmitted, detail.Status)
	assert.Equal(t, service.FormatRequestNumber(time.Now().UTC().Year(), 1), detail.RequestNumber)
	assert.Equal(t, project.ID, detail.ProjectID)
	assert.Equal(t, requester.ID, detail.RequesterID)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "TMT Bars 12mm", detail.Items[0].Name)
	assert.Empty(t, detail.Approvals)
}

func TestMaterialRequestService_Create_SequentialNumbers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	first, err := svc.Create(context.Background(), requester.ID, validCreateRequest(project.ID))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), requester.ID, validCreateRequest(project.ID))
	require.NoError(t, err)

	year := time.Now().UTC().Year()
	assert.Equal(t, service.FormatRequestNumber(year, 1), first.RequestNumber)
	assert.Equal(t, service.FormatRequestNumber(year, 2), second.RequestNumber)
}

func TestMaterialRequestService_Create_EmptyDraftAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	detail, err := svc.Create(context.Background(), requester.ID, &domain.CreateMaterialRequestRequest{
		ProjectID: project.ID,
		AsDraft:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusDraft, detail.Status)
	assert.Empty(t, detail.Items)
}

func TestMaterialRequestService_Create_EmptySubmissionRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	_, err := svc.Create(context.Background(), requester.ID, &domain.CreateMaterialRequestRequest{
		ProjectID: project.ID,
	})
	require.ErrorIs(t, err, service.ErrEmptyItems)

	// Nothing was written: not even a request number was consumed.
	var count int64
	require.NoError(t, db.Model(&domain.MaterialRequest{}).Count(&count).Error)
	assert.Zero(t, count)
	var seqCount int64
	require.NoError(t, db.Model(&domain.NumberSequence{}).Count(&seqCount).Error)
	assert.Zero(t, seqCount)
}

func TestMaterialRequestService_Create_UnknownProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)

	_, err := svc.Create(context.Background(), requester.ID, validCreateRequest(uuid.New()))
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestMaterialRequestService_Create_InvalidItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	tests := []struct {
		name string
		item domain.RequestItemInput
	}{
		{"missing name", domain.RequestItemInput{Quantity: 1, Unit: domain.UnitNos}},
		{"zero quantity", domain.RequestItemInput{Name: "Sand", Quantity: 0, Unit: domain.UnitM3}},
		{"negative quantity", domain.RequestItemInput{Name: "Sand", Quantity: -3, Unit: domain.UnitM3}},
		{"unknown unit", domain.RequestItemInput{Name: "Sand", Quantity: 1, Unit: "litres"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), requester.ID, &domain.CreateMaterialRequestRequest{
				ProjectID: project.ID,
				Items:     []domain.RequestItemInput{tt.item},
			})
			assert.ErrorIs(t, err, service.ErrInvalidInput)
		})
	}
}

func TestMaterialRequestService_Submit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")
	caller := testutil.UserContextFor(requester)

	draft := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusDraft)

	detail, err := svc.Submit(context.Background(), caller, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusSubmitted, detail.Status)

	// Already submitted, a second submit is an illegal transition.
	_, err = svc.Submit(context.Background(), caller, draft.ID)
	assert.ErrorIs(t, err, service.ErrIllegalTransition)
}

func TestMaterialRequestService_Submit_EmptyDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")
	caller := testutil.UserContextFor(requester)

	detail, err := svc.Create(context.Background(), requester.ID, &domain.CreateMaterialRequestRequest{
		ProjectID: project.ID,
		AsDraft:   true,
	})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), caller, detail.ID)
	assert.ErrorIs(t, err, service.ErrEmptyItems)
}

func TestMaterialRequestService_Submit_NotOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	other := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	draft := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusDraft)

	_, err := svc.Submit(context.Background(), testutil.UserContextFor(other), draft.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestMaterialRequestService_Approve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	project := testutil.CreateTestProject(t, db, "Tower B")

	request := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)

	detail, err := svc.Approve(context.Background(), admin.ID, request.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, detail.Status)
	require.Len(t, detail.Approvals, 1)
	assert.Equal(t, domain.ApprovalActionApproved, detail.Approvals[0].Action)
	assert.Equal(t, admin.ID, detail.Approvals[0].UserID)
}

func TestMaterialRequestService_Approve_WrongStatusWritesNoApproval(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	project := testutil.CreateTestProject(t, db, "Tower B")

	for _, status := range []domain.RequestStatus{
		domain.RequestStatusDraft,
		domain.RequestStatusApproved,
		domain.RequestStatusRejected,
		domain.RequestStatusClosed,
	} {
		request := testutil.CreateTestRequest(t, db, project.ID, requester.ID, status)

		_, err := svc.Approve(context.Background(), admin.ID, request.ID, "")
		assert.ErrorIs(t, err, service.ErrIllegalTransition, "status %s", status)

		var reloaded domain.MaterialRequest
		require.NoError(t, db.First(&reloaded, "id = ?", request.ID).Error)
		assert.Equal(t, status, reloaded.Status, "status must be unchanged")
	}

	var approvals int64
	require.NoError(t, db.Model(&domain.Approval{}).Count(&approvals).Error)
	assert.Zero(t, approvals, "failed decisions must not write approval rows")
}

func TestMaterialRequestService_Reject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	project := testutil.CreateTestProject(t, db, "Tower B")

	request := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)

	_, err := svc.Reject(context.Background(), admin.ID, request.ID, "   ")
	assert.ErrorIs(t, err, service.ErrCommentRequired)

	detail, err := svc.Reject(context.Background(), admin.ID, request.ID, "duplicate of REQ-2026-0007")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, detail.Status)
	require.Len(t, detail.Approvals, 1)
	assert.Equal(t, domain.ApprovalActionRejected, detail.Approvals[0].Action)
	assert.Equal(t, "duplicate of REQ-2026-0007", detail.Approvals[0].Comment)
}

func TestMaterialRequestService_Close(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	approved := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusApproved)
	detail, err := svc.Close(context.Background(), approved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusClosed, detail.Status)

	submitted := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)
	_, err = svc.Close(context.Background(), submitted.ID)
	assert.ErrorIs(t, err, service.ErrIllegalTransition)

	_, err = svc.Close(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrRequestNotFound)
}

func TestMaterialRequestService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")
	caller := testutil.UserContextFor(requester)

	request := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusDraft)

	urgent := domain.PriorityUrgent
	remarks := "needed before the slab pour"
	detail, err := svc.Update(context.Background(), caller, request.ID, &domain.UpdateMaterialRequestRequest{
		Priority: &urgent,
		Remarks:  &remarks,
		Items: []domain.RequestItemInput{
			{Name: "Cement OPC 53", Quantity: 150, Unit: domain.UnitBags},
			{Name: "River Sand", Quantity: 12, Unit: domain.UnitM3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityUrgent, detail.Priority)
	assert.Equal(t, remarks, detail.Remarks)
	assert.Len(t, detail.Items, 2)
}

func TestMaterialRequestService_Update_Guards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	other := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	remarks := "edit"
	update := &domain.UpdateMaterialRequestRequest{Remarks: &remarks}

	draft := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusDraft)
	_, err := svc.Update(context.Background(), testutil.UserContextFor(other), draft.ID, update)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	approved := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusApproved)
	_, err = svc.Update(context.Background(), testutil.UserContextFor(requester), approved.ID, update)
	assert.ErrorIs(t, err, service.ErrIllegalTransition)

	// A submitted request cannot have its items emptied out.
	submitted := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)
	_, err = svc.Update(context.Background(), testutil.UserContextFor(requester), submitted.ID, &domain.UpdateMaterialRequestRequest{
		Items: []domain.RequestItemInput{},
	})
	assert.ErrorIs(t, err, service.ErrEmptyItems)
}

func TestMaterialRequestService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	other := testutil.CreateTestUser(t, db, domain.RoleUser)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	project := testutil.CreateTestProject(t, db, "Tower B")

	draft := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusDraft)
	require.NoError(t, svc.Delete(context.Background(), testutil.UserContextFor(requester), draft.ID))

	approved := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusApproved)
	err := svc.Delete(context.Background(), testutil.UserContextFor(requester), approved.ID)
	assert.ErrorIs(t, err, service.ErrRequestNotDeletable)

	submitted := testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)
	err = svc.Delete(context.Background(), testutil.UserContextFor(other), submitted.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	// Admins may delete regardless of status.
	require.NoError(t, svc.Delete(context.Background(), testutil.UserContextFor(admin), approved.ID))

	err = svc.Delete(context.Background(), testutil.UserContextFor(admin), uuid.New())
	assert.ErrorIs(t, err, service.ErrRequestNotFound)
}

func TestMaterialRequestService_List_ScopesNonAdmins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	alice := testutil.CreateTestUser(t, db, domain.RoleUser)
	bob := testutil.CreateTestUser(t, db, domain.RoleUser)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	project := testutil.CreateTestProject(t, db, "Tower B")

	testutil.CreateTestRequest(t, db, project.ID, alice.ID, domain.RequestStatusSubmitted)
	testutil.CreateTestRequest(t, db, project.ID, alice.ID, domain.RequestStatusDraft)
	testutil.CreateTestRequest(t, db, project.ID, bob.ID, domain.RequestStatusSubmitted)

	mine, total, err := svc.List(context.Background(), testutil.UserContextFor(alice), nil, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, dto := range mine {
		assert.Equal(t, alice.ID, dto.RequesterID)
	}

	// A non-admin cannot widen the scope by filtering for another requester.
	bobID := bob.ID
	_, total, err = svc.List(context.Background(), testutil.UserContextFor(alice), &repository.RequestFilter{RequesterID: &bobID}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, total, err = svc.List(context.Background(), testutil.UserContextFor(admin), nil, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestMaterialRequestService_ListPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)
	testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusDraft)
	testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusApproved)

	pending, total, err := svc.ListPending(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.RequestStatusSubmitted, pending[0].Status)
}

func TestMaterialRequestService_PendingCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRequestService(db)
	requester := testutil.CreateTestUser(t, db, domain.RoleUser)
	project := testutil.CreateTestProject(t, db, "Tower B")

	count, err := svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)
	testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusSubmitted)
	testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusDraft)
	testutil.CreateTestRequest(t, db, project.ID, requester.ID, domain.RequestStatusRejected)

	count, err = svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
