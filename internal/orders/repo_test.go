package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cartloom/cartloom-backend/pkg/db/models"
	"github.com/cartloom/cartloom-backend/pkg/enums"
	"github.com/cartloom/cartloom-backend/pkg/pagination"
	"github.com/cartloom/cartloom-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  addresses TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
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
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  total_price NUMERIC NOT NULL,
  product_data TEXT,
  created_at DATETIME
);`
	payments := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  gateway_order_id TEXT NOT NULL,
  gateway_payment_id TEXT NOT NULL UNIQUE,
  signature TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL,
  method TEXT,
  status TEXT NOT NULL,
  payload TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(payments).Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		Name:         name,
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type orderSeed struct {
	user          *models.User
	status        enums.OrderStatus
	paymentStatus enums.PaymentStatus
	createdAt     time.Time
	city          string
}

func seedOrder(t *testing.T, db *gorm.DB, seed orderSeed) *models.Order {
	t.Helper()

	city := seed.city
	if city == "" {
		city = "Pune"
	}
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-" + uuid.NewString()[:13],
		UserID:        seed.user.ID,
		CartID:        seed.user.ID.String(),
		Status:        seed.status,
		PaymentStatus: seed.paymentStatus,
		SubTotal:      decimal.RequireFromString("100.00"),
		GrandTotal:    decimal.RequireFromString("100.00"),
		ShippingAddress: types.Address{
			Name: seed.user.Name, AddressLine1: "1 Test Lane", City: city,
			State: "MH", PostalCode: "411001", Country: "IN",
		},
		BillingAddress: types.Address{
			Name: seed.user.Name, AddressLine1: "1 Test Lane", City: city,
			State: "MH", PostalCode: "411001", Country: "IN",
		},
		PaymentMethod: "razorpay",
	}
	require.NoError(t, db.Create(order).Error)

	if !seed.createdAt.IsZero() {
		require.NoError(t, db.Model(order).UpdateColumn("created_at", seed.createdAt).Error)
	}
	return order
}

func TestAdminListCountMatchesFilteredRows(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "Alice Rao", "alice@example.com")
	bob := seedUser(t, db, "Bob Singh", "bob@example.com")

	for i := 0; i < 3; i++ {
		seedOrder(t, db, orderSeed{user: alice, status: enums.OrderStatusProcessing, paymentStatus: enums.PaymentStatusCompleted})
	}
	for i := 0; i < 2; i++ {
		seedOrder(t, db, orderSeed{user: bob, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending})
	}

	status := enums.OrderStatusProcessing
	orders, total, err := repo.AdminList(ctx, pagination.Params{Page: 1, Limit: 2}, AdminFilters{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, int64(3), total, "count must use the same predicate as the page query")
	assert.Len(t, orders, 2, "page query honors the limit")

	// page past the end still reports the filtered total
	orders, total, err = repo.AdminList(ctx, pagination.Params{Page: 3, Limit: 2}, AdminFilters{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, orders)
}

func TestAdminListZeroMatches(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "Carol", "carol@example.com")
	seedOrder(t, db, orderSeed{user: user, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending})

	status := enums.OrderStatusShipped
	orders, total, err := repo.AdminList(ctx, pagination.Params{Page: 1, Limit: 10}, AdminFilters{Status: &status})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}

func TestAdminListSearchMatchesUserAndAddress(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "Alice Rao", "alice@example.com")
	bob := seedUser(t, db, "Bob Singh", "bob@shop.example")
	aliceOrder := seedOrder(t, db, orderSeed{user: alice, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending, city: "Mumbai"})
	seedOrder(t, db, orderSeed{user: bob, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending, city: "Delhi"})

	// by customer email
	orders, total, err := repo.AdminList(ctx, pagination.Params{}, AdminFilters{Search: "alice@example"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, aliceOrder.ID, orders[0].ID)

	// by customer name
	_, total, err = repo.AdminList(ctx, pagination.Params{}, AdminFilters{Search: "Singh"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// by shipping address city
	_, total, err = repo.AdminList(ctx, pagination.Params{}, AdminFilters{Search: "Mumbai"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// by order number
	_, total, err = repo.AdminList(ctx, pagination.Params{}, AdminFilters{Search: aliceOrder.OrderNumber})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestAdminListDateRange(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "Dana", "dana@example.com")
	old := seedOrder(t, db, orderSeed{
		user: user, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending,
		createdAt: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
	})
	recent := seedOrder(t, db, orderSeed{
		user: user, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending,
		createdAt: time.Date(2026, 2, 10, 18, 30, 0, 0, time.UTC),
	})

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	orders, total, err := repo.AdminList(ctx, pagination.Params{}, AdminFilters{DateFrom: &from})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, recent.ID, orders[0].ID)

	// date-only upper bound includes orders placed later that day
	to := NormalizeDateTo(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	orders, total, err = repo.AdminList(ctx, pagination.Params{}, AdminFilters{DateTo: &to})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, old.ID, orders[0].ID)
}

func TestListByUserScopesAndPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "Alice", "a@example.com")
	bob := seedUser(t, db, "Bob", "b@example.com")
	for i := 0; i < 3; i++ {
		seedOrder(t, db, orderSeed{user: alice, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending})
	}
	seedOrder(t, db, orderSeed{user: bob, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending})

	orders, total, err := repo.ListByUser(ctx, alice.ID, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, orders, 2)
	for _, order := range orders {
		assert.Equal(t, alice.ID, order.UserID)
	}
}

func TestFindByGatewayOrderID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "Eve", "eve@example.com")
	order := seedOrder(t, db, orderSeed{user: user, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending})
	gatewayID := "order_GW123"
	require.NoError(t, db.Model(order).UpdateColumn("gateway_order_id", gatewayID).Error)

	found, err := repo.FindByGatewayOrderID(ctx, gatewayID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindByGatewayOrderID(ctx, "order_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindPendingBefore(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "Frank", "frank@example.com")
	stale := seedOrder(t, db, orderSeed{
		user: user, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending,
		createdAt: time.Now().Add(-10 * 24 * time.Hour),
	})
	seedOrder(t, db, orderSeed{user: user, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending})
	paidStale := seedOrder(t, db, orderSeed{
		user: user, status: enums.OrderStatusProcessing, paymentStatus: enums.PaymentStatusCompleted,
		createdAt: time.Now().Add(-10 * 24 * time.Hour),
	})

	found, err := repo.FindPendingBefore(ctx, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
	assert.NotEqual(t, paidStale.ID, found[0].ID)
}
