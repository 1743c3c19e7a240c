package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/config"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/internal/service"
	"github.com/sitesupply/procurement-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *service.AuthService {
	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-tests",
		Issuer:          "procurement-api-test",
		TokenTTLMinutes: 60,
	})
	return service.NewAuthService(repository.NewUserRepository(db), tokens, zap.NewNop())
}

func createLoginUser(t *testing.T, db *gorm.DB, password string, active bool) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &domain.User{
		Email:        "engineer@example.com",
		DisplayName:  "Site Engineer",
		Role:         domain.RoleUser,
		PasswordHash: hash,
		IsActive:     active,
	}
	require.NoError(t, db.Create(user).Error)
	if !active {
		// The is_active column defaults to true and GORM omits zero-value
		// fields on insert, so force the flag explicitly.
		require.NoError(t, db.Model(user).Update("is_active", false).Error)
	}
	return user
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db)
	user := createLoginUser(t, db, "s3cure-pass", true)

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "engineer@example.com",
		Password: "s3cure-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLoginAt)

	var reloaded domain.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.NotNil(t, reloaded.LastLoginAt)
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db)
	createLoginUser(t, db, "s3cure-pass", true)

	// Wrong password and unknown email must be indistinguishable.
	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "engineer@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cure-pass",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db)
	createLoginUser(t, db, "s3cure-pass", false)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "engineer@example.com",
		Password: "s3cure-pass",
	})
	assert.ErrorIs(t, err, service.ErrUserInactive)
}

func TestAuthService_Me(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db)
	user := createLoginUser(t, db, "s3cure-pass", true)

	dto, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, dto.Email)

	_, err = svc.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.Me(context.Background(), user.ID)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuthService_ChangePassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db)
	user := createLoginUser(t, db, "old-password", true)

	err := svc.ChangePassword(context.Background(), user.ID, &domain.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-password-1",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), user.ID, &domain.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password-1",
	})
	require.NoError(t, err)

	// Old password no longer works, new one does.
	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email:    user.Email,
		Password: "old-password",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email:    user.Email,
		Password: "new-password-1",
	})
	assert.NoError(t, err)
}
