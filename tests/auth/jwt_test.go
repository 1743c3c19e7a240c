package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/config"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager(ttlMinutes int) *auth.TokenManager {
	return auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-tests",
		Issuer:          "procurement-api-test",
		TokenTTLMinutes: ttlMinutes,
	})
}

func testUser(role domain.UserRole) *domain.User {
	u := &domain.User{
		Email:       "site.engineer@example.com",
		DisplayName: "Site Engineer",
		Role:        role,
	}
	u.ID = uuid.New()
	return u
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tm := newTestTokenManager(60)
	user := testUser(domain.RoleUser)

	token, err := tm.IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userCtx, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, user.Email, userCtx.Email)
	assert.Equal(t, user.DisplayName, userCtx.DisplayName)
	assert.Equal(t, domain.RoleUser, userCtx.Role)
	assert.False(t, userCtx.IsAdmin())
}

func TestTokenManager_AdminRoleRoundTrip(t *testing.T) {
	tm := newTestTokenManager(60)

	token, err := tm.IssueToken(testUser(domain.RoleAdmin))
	require.NoError(t, err)

	userCtx, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, userCtx.Role)
	assert.True(t, userCtx.IsAdmin())
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tm := newTestTokenManager(-1)

	token, err := tm.IssueToken(testUser(domain.RoleUser))
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := newTestTokenManager(60)
	validator := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "a-different-secret",
		Issuer:          "procurement-api-test",
		TokenTTLMinutes: 60,
	})

	token, err := issuer.IssueToken(testUser(domain.RoleUser))
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	issuer := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-tests",
		Issuer:          "some-other-service",
		TokenTTLMinutes: 60,
	})
	validator := newTestTokenManager(60)

	token, err := issuer.IssueToken(testUser(domain.RoleUser))
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_GarbageToken(t *testing.T) {
	tm := newTestTokenManager(60)

	_, err := tm.ValidateToken("not.a.token")
	assert.Error(t, err)

	_, err = tm.ValidateToken("")
	assert.Error(t, err)
}
