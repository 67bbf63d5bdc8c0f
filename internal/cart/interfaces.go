package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartloom/cartloom-backend/pkg/db/models"
)

// Repository defines persistence operations for cart items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByCart(ctx context.Context, cartID string) ([]models.CartItem, error)
	FindItem(ctx context.Context, cartID string, itemID uuid.UUID) (*models.CartItem, error)
	FindByTriple(ctx context.Context, cartID string, productID uuid.UUID, variantID *uuid.UUID) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, qty int) error
	UpdateCartID(ctx context.Context, itemID uuid.UUID, cartID string) error
	Delete(ctx context.Context, itemID uuid.UUID) error
	Clear(ctx context.Context, cartID string) error
	DeleteIdleGuestItems(ctx context.Context, cutoff time.Time) (int64, error)
}
