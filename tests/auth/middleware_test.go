package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/config"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMiddleware(t *testing.T) *auth.Middleware {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth = config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-tests",
		Issuer:          "procurement-api-test",
		TokenTTLMinutes: 60,
	}
	return auth.NewMiddleware(cfg, zap.NewNop())
}

func TestAuthenticate_ValidToken(t *testing.T) {
	m := newTestMiddleware(t)
	token, err := m.TokenManager().IssueToken(testUser(domain.RoleUser))
	require.NoError(t, err)

	var sawUser bool
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := auth.FromContext(r.Context())
		sawUser = ok && userCtx.Email == "site.engineer@example.com"
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, sawUser)
}

func TestAuthenticate_Rejections(t *testing.T) {
	m := newTestMiddleware(t)
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer scheme", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	m := newTestMiddleware(t)
	expired := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-tests",
		Issuer:          "procurement-api-test",
		TokenTTLMinutes: -1,
	})
	token, err := expired.IssueToken(testUser(domain.RoleUser))
	require.NoError(t, err)

	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	m := newTestMiddleware(t)
	handler := m.Authenticate(m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name     string
		role     domain.UserRole
		expected int
	}{
		{"admin passes", domain.RoleAdmin, http.StatusNoContent},
		{"regular user rejected", domain.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := m.TokenManager().IssueToken(testUser(tt.role))
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestRequireAdmin_NoUserContext(t *testing.T) {
	m := newTestMiddleware(t)
	handler := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
