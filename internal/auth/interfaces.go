package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cartloom/cartloom-backend/pkg/db/models"
)

// Repository is the user lookup surface the login flow needs.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// SessionStore issues and revokes the refresh-token session bound to an
// access token id.
type SessionStore interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}
