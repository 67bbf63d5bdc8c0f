package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	userIDKey   contextKey = "auth.user_id"
	userRoleKey contextKey = "auth.role"
	accessIDKey contextKey = "auth.access_id"
	cartIDKey   contextKey = "cart.id"
)

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// RoleFromContext returns the authenticated user's role, if any.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(userRoleKey).(string)
	return role, ok
}

// AccessIDFromContext returns the access token id backing the session.
func AccessIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accessIDKey).(string)
	return id, ok
}

// CartIDFromContext returns the resolved cart identity: the user id
// string for authenticated callers, else the guest cookie token.
func CartIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(cartIDKey).(string)
	return id, ok
}

// WithIdentity seeds the authenticated identity into the context.
func WithIdentity(ctx context.Context, userID uuid.UUID, role, accessID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userRoleKey, role)
	return context.WithValue(ctx, accessIDKey, accessID)
}

// WithCartID seeds the resolved cart id into the context.
func WithCartID(ctx context.Context, cartID string) context.Context {
	return context.WithValue(ctx, cartIDKey, cartID)
}
