package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/internal/service"
	"github.com/sitesupply/procurement-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *service.UserService {
	return service.NewUserService(repository.NewUserRepository(db), zap.NewNop())
}

func TestUserService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)

	dto, err := svc.Create(context.Background(), &domain.CreateUserRequest{
		Email:       "foreman@example.com",
		DisplayName: "Site Foreman",
		Designation: "Foreman",
		Role:        domain.RoleUser,
		Password:    "initial-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "foreman@example.com", dto.Email)
	assert.False(t, dto.IsAdmin)
	assert.True(t, dto.IsActive)

	// The password is stored hashed, never as given.
	var stored domain.User
	require.NoError(t, db.First(&stored, "id = ?", dto.ID).Error)
	assert.NotEqual(t, "initial-password", stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "initial-password"))
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	req := &domain.CreateUserRequest{
		Email:       "foreman@example.com",
		DisplayName: "Site Foreman",
		Role:        domain.RoleUser,
		Password:    "initial-password",
	}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)
}

func TestUserService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	user := testutil.CreateTestUser(t, db, domain.RoleUser)

	name := "Renamed User"
	adminRole := domain.RoleAdmin
	inactive := false
	dto, err := svc.Update(context.Background(), user.ID, &domain.UpdateUserRequest{
		DisplayName: &name,
		Role:        &adminRole,
		IsActive:    &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed User", dto.DisplayName)
	assert.Equal(t, domain.RoleAdmin, dto.Role)
	assert.False(t, dto.IsActive)

	_, err = svc.Update(context.Background(), uuid.New(), &domain.UpdateUserRequest{DisplayName: &name})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	user := testutil.CreateTestUser(t, db, domain.RoleUser)

	err := svc.Delete(context.Background(), admin.ID, admin.ID)
	assert.ErrorIs(t, err, service.ErrSelfDeletion)

	require.NoError(t, svc.Delete(context.Background(), user.ID, admin.ID))

	err = svc.Delete(context.Background(), uuid.New(), admin.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	testutil.CreateTestUser(t, db, domain.RoleAdmin)
	testutil.CreateTestUser(t, db, domain.RoleUser)
	testutil.CreateTestUser(t, db, domain.RoleUser)

	users, total, err := svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)
}
