package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext_RoundTrip(t *testing.T) {
	userCtx := &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Warehouse Lead",
		Email:       "warehouse@example.com",
		Role:        domain.RoleUser,
	}

	ctx := auth.WithUserContext(context.Background(), userCtx)
	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, userCtx, got)
}

func TestFromContext_Missing(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestMustFromContext_PanicsWithoutUser(t *testing.T) {
	assert.Panics(t, func() {
		auth.MustFromContext(context.Background())
	})
}

func TestUserContext_CanModifyRequest(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name     string
		role     domain.UserRole
		userID   uuid.UUID
		expected bool
	}{
		{"owner may modify own request", domain.RoleUser, ownerID, true},
		{"other user may not modify", domain.RoleUser, otherID, false},
		{"admin may modify any request", domain.RoleAdmin, otherID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &auth.UserContext{UserID: tt.userID, Role: tt.role}
			assert.Equal(t, tt.expected, u.CanModifyRequest(ownerID))
		})
	}
}
