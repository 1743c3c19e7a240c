package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
)

// UserContext holds the authenticated user for the current request.
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        domain.UserRole
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext stores the user context on the request context.
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts the user context.
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts the user context or panics. Only call below the
// Authenticate middleware.
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// IsAdmin reports whether the user carries the admin role. No other role
// grants elevated access.
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// CanModifyRequest reports whether the user may mutate a request owned by
// requesterID. Owners and admins qualify.
func (u *UserContext) CanModifyRequest(requesterID uuid.UUID) bool {
	return u.IsAdmin() || u.UserID == requesterID
}
