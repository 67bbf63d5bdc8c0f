package orders

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartloom/cartloom-backend/pkg/enums"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	"github.com/cartloom/cartloom-backend/pkg/pagination"
)

func TestAdminUpdateStatusHappyPath(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedUser(t, db, "Gina", "gina@example.com")
	order := seedOrder(t, db, orderSeed{user: user, status: enums.OrderStatusProcessing, paymentStatus: enums.PaymentStatusCompleted})

	updated, err := svc.AdminUpdateStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.Status)
}

func TestAdminUpdateStatusRejectsIllegalTransition(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedUser(t, db, "Hank", "hank@example.com")
	order := seedOrder(t, db, orderSeed{user: user, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending})

	_, err = svc.AdminUpdateStatus(ctx, order.ID, "shipped")
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())

	// order unchanged
	current, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, current.Status)
}

func TestAdminUpdateStatusTerminalStatesBlockChanges(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedUser(t, db, "Iris", "iris@example.com")
	terminalStatuses := []enums.OrderStatus{
		enums.OrderStatusCompleted,
		enums.OrderStatusCancelled,
		enums.OrderStatusFailed,
		enums.OrderStatusPaymentFailed,
	}

	for _, terminal := range terminalStatuses {
		order := seedOrder(t, db, orderSeed{user: user, status: terminal, paymentStatus: enums.PaymentStatusPending})
		_, err := svc.AdminUpdateStatus(ctx, order.ID, "processing")
		require.Error(t, err, "terminal status %s must block transitions", terminal)
		appErr := pkgerrors.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
	}
}

func TestAdminUpdateStatusIdempotentRepeat(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedUser(t, db, "Jai", "jai@example.com")
	order := seedOrder(t, db, orderSeed{user: user, status: enums.OrderStatusDelivered, paymentStatus: enums.PaymentStatusCompleted})

	first, err := svc.AdminUpdateStatus(ctx, order.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, first.Status)

	// repeating the same terminal write is a no-op success
	second, err := svc.AdminUpdateStatus(ctx, order.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, second.Status)
}

func TestAdminUpdateStatusFulfillmentImpliesPaid(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedUser(t, db, "Kim", "kim@example.com")
	order := seedOrder(t, db, orderSeed{user: user, status: enums.OrderStatusShipped, paymentStatus: enums.PaymentStatusPending})

	updated, err := svc.AdminUpdateStatus(ctx, order.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)
	assert.Equal(t, enums.PaymentStatusCompleted, updated.PaymentStatus,
		"marking delivered settles the payment status")
}

func TestAdminUpdateStatusUnknownStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)

	user := seedUser(t, db, "Lena", "lena@example.com")
	order := seedOrder(t, db, orderSeed{user: user, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending})

	_, err = svc.AdminUpdateStatus(context.Background(), order.ID, "refunded")
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestAdminDetailIncludesUserProjection(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedUser(t, db, "Mona Das", "mona@example.com")
	order := seedOrder(t, db, orderSeed{user: user, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending})

	detail, err := svc.AdminDetail(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.User)
	assert.Equal(t, "Mona Das", detail.User.Name)
	assert.Equal(t, "mona@example.com", detail.User.Email)
}

func TestFindByIDForUserOwnership(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)
	ctx := context.Background()

	owner := seedUser(t, db, "Nia", "nia@example.com")
	other := seedUser(t, db, "Omar", "omar@example.com")
	order := seedOrder(t, db, orderSeed{user: owner, status: enums.OrderStatusPending, paymentStatus: enums.PaymentStatusPending})

	found, err := svc.FindByIDForUser(ctx, order.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.FindByIDForUser(ctx, order.ID, other.ID)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestAdminListEmptyResultShape(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)

	list, err := svc.AdminList(context.Background(), pagination.Params{}, AdminFilters{Search: "no-such-order"})
	require.NoError(t, err)
	assert.NotNil(t, list.Orders)
	assert.Empty(t, list.Orders)
	assert.Zero(t, list.Meta.Total)
}
