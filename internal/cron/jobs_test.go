package cron

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cartloom/cartloom-backend/internal/cart"
	"github.com/cartloom/cartloom-backend/internal/orders"
	"github.com/cartloom/cartloom-backend/pkg/db/models"
	"github.com/cartloom/cartloom-backend/pkg/enums"
	"github.com/cartloom/cartloom-backend/pkg/logger"
)

func setupJobsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  cart_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  sub_total NUMERIC NOT NULL,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  shipping_amount NUMERIC NOT NULL DEFAULT 0,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  grand_total NUMERIC NOT NULL,
  shipping_address TEXT,
  billing_address TEXT,
  payment_method TEXT NOT NULL,
  gateway_order_id TEXT,
  payment_details TEXT,
  customer_note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func jobsTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func seedJobOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, paymentStatus enums.PaymentStatus, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-" + uuid.NewString()[:13],
		UserID:        uuid.New(),
		CartID:        uuid.NewString(),
		Status:        status,
		PaymentStatus: paymentStatus,
		SubTotal:      decimal.RequireFromString("100.00"),
		GrandTotal:    decimal.RequireFromString("100.00"),
		PaymentMethod: "razorpay",
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedJobCartItem(t *testing.T, db *gorm.DB, cartID string, updatedAt time.Time) *models.CartItem {
	t.Helper()

	item := &models.CartItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: uuid.New(),
		Quantity:  1,
	}
	require.NoError(t, db.Create(item).Error)
	require.NoError(t, db.Model(item).UpdateColumn("updated_at", updatedAt).Error)
	return item
}

func TestOrderExpiryCancelsStalePendingOrders(t *testing.T) {
	db := setupJobsTestDB(t)
	repo := orders.NewRepository(db)

	stale := seedJobOrder(t, db, enums.OrderStatusPending, enums.PaymentStatusPending, time.Now().Add(-10*24*time.Hour))
	fresh := seedJobOrder(t, db, enums.OrderStatusPending, enums.PaymentStatusPending, time.Now().Add(-time.Hour))
	paid := seedJobOrder(t, db, enums.OrderStatusProcessing, enums.PaymentStatusCompleted, time.Now().Add(-10*24*time.Hour))

	job := NewOrderExpiryJob(repo, 7*24*time.Hour, jobsTestLogger())
	require.NoError(t, job.Run(context.Background()))

	var gotStale models.Order
	require.NoError(t, db.First(&gotStale, "id = ?", stale.ID).Error)
	assert.Equal(t, enums.OrderStatusCancelled, gotStale.Status)

	var gotFresh models.Order
	require.NoError(t, db.First(&gotFresh, "id = ?", fresh.ID).Error)
	assert.Equal(t, enums.OrderStatusPending, gotFresh.Status)

	var gotPaid models.Order
	require.NoError(t, db.First(&gotPaid, "id = ?", paid.ID).Error)
	assert.Equal(t, enums.OrderStatusProcessing, gotPaid.Status)
}

func TestOrderExpiryNoStaleOrdersIsNoOp(t *testing.T) {
	db := setupJobsTestDB(t)
	job := NewOrderExpiryJob(orders.NewRepository(db), 7*24*time.Hour, jobsTestLogger())
	require.NoError(t, job.Run(context.Background()))
}

func TestCartCleanupDeletesOnlyIdleGuestCarts(t *testing.T) {
	db := setupJobsTestDB(t)
	repo := cart.NewRepository(db)

	guestToken := "0123456789abcdefghijklmnopqrstuvwxyzABCDEFG"
	idleGuest := seedJobCartItem(t, db, guestToken, time.Now().Add(-60*24*time.Hour))
	activeGuest := seedJobCartItem(t, db, "another-guest-token-another-guest-token-xyz", time.Now())
	idleUser := seedJobCartItem(t, db, uuid.NewString(), time.Now().Add(-60*24*time.Hour))

	job := NewCartCleanupJob(repo, 30*24*time.Hour, jobsTestLogger())
	require.NoError(t, job.Run(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("id = ?", idleGuest.ID).Count(&count).Error)
	assert.Zero(t, count, "idle guest cart item should be removed")

	require.NoError(t, db.Model(&models.CartItem{}).Where("id = ?", activeGuest.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "active guest cart item should survive")

	require.NoError(t, db.Model(&models.CartItem{}).Where("id = ?", idleUser.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "user cart item should never be cleaned up")
}
