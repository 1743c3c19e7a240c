package mapper_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/mapper"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMaterialRequestDTO_PlaceholderNames(t *testing.T) {
	row := &repository.RequestSummary{
		MaterialRequest: domain.MaterialRequest{
			BaseModel:     domain.BaseModel{ID: uuid.New()},
			RequestNumber: "REQ-2026-0042",
			Status:        domain.RequestStatusSubmitted,
			Priority:      domain.PriorityNormal,
		},
	}

	dto := mapper.ToMaterialRequestDTO(row)
	assert.Equal(t, domain.UnknownProjectName, dto.ProjectName)
	assert.Equal(t, domain.UnknownUserName, dto.RequesterName)
}

func TestToMaterialRequestDTO_Timestamps(t *testing.T) {
	created := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	required := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	row := &repository.RequestSummary{
		MaterialRequest: domain.MaterialRequest{
			BaseModel: domain.BaseModel{
				ID:        uuid.New(),
				CreatedAt: created,
				UpdatedAt: created,
			},
			RequiredDate: &required,
		},
		ProjectName:   "Tower B",
		RequesterName: "Site Engineer",
	}

	dto := mapper.ToMaterialRequestDTO(row)
	assert.Equal(t, "2026-03-15T09:30:00Z", dto.CreatedAt)
	require.NotNil(t, dto.RequiredDate)
	assert.Equal(t, "2026-04-01", *dto.RequiredDate)
}

func TestToMaterialRequestDetailDTO(t *testing.T) {
	request := &domain.MaterialRequest{
		BaseModel:     domain.BaseModel{ID: uuid.New()},
		RequestNumber: "REQ-2026-0007",
		Status:        domain.RequestStatusApproved,
		Project:       &domain.Project{Name: "Tower B"},
		Requester:     &domain.User{DisplayName: "Site Engineer", Designation: "Engineer"},
		Items: []domain.MaterialRequestItem{
			{Name: "Cement OPC 53", Quantity: 100, Unit: domain.UnitBags},
		},
		Approvals: []domain.Approval{
			{Action: domain.ApprovalActionApproved, Comment: "ok"},
		},
	}

	detail := mapper.ToMaterialRequestDetailDTO(request)
	assert.Equal(t, "Tower B", detail.ProjectName)
	assert.Equal(t, "Site Engineer", detail.RequesterName)
	assert.Equal(t, 1, detail.ItemCount)
	require.Len(t, detail.Items, 1)
	require.Len(t, detail.Approvals, 1)
	// Approver rows without a loaded user fall back to the placeholder.
	assert.Equal(t, domain.UnknownUserName, detail.Approvals[0].ApproverName)
}

func TestToStockTransactionDTO(t *testing.T) {
	row := &domain.StockTransaction{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Date:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Item:      "River Sand",
		Quantity:  -8,
		Unit:      domain.UnitM3,
		CreatedBy: &domain.User{DisplayName: "Warehouse Lead"},
	}

	dto := mapper.ToStockTransactionDTO(row)
	assert.Equal(t, "2026-02-10", dto.Date)
	assert.Equal(t, -8.0, dto.Quantity)
	assert.Equal(t, "Warehouse Lead", dto.CreatedBy)
}

func TestToUserDTO(t *testing.T) {
	lastLogin := time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC)
	user := &domain.User{
		BaseModel:   domain.BaseModel{ID: uuid.New()},
		Email:       "admin@example.com",
		DisplayName: "Admin",
		Role:        domain.RoleAdmin,
		IsActive:    true,
		LastLoginAt: &lastLogin,
	}

	dto := mapper.ToUserDTO(user)
	assert.True(t, dto.IsAdmin)
	require.NotNil(t, dto.LastLoginAt)
	assert.Equal(t, "2026-01-05T18:00:00Z", *dto.LastLoginAt)

	user.LastLoginAt = nil
	dto = mapper.ToUserDTO(user)
	assert.Nil(t, dto.LastLoginAt)
}

func TestParseDate(t *testing.T) {
	parsed, err := mapper.ParseDate("2026-04-01")
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *parsed)

	parsed, err = mapper.ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, parsed)

	_, err = mapper.ParseDate("01/04/2026")
	assert.Error(t, err)
}
