package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartloom/cartloom-backend/api/middleware"
	"github.com/cartloom/cartloom-backend/internal/cart"
	"github.com/cartloom/cartloom-backend/internal/orders"
	"github.com/cartloom/cartloom-backend/pkg/db/models"
	"github.com/cartloom/cartloom-backend/pkg/enums"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	"github.com/cartloom/cartloom-backend/pkg/pagination"
	"github.com/cartloom/cartloom-backend/pkg/types"
)

func ctrlTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

type failingPinger struct{ err error }

func (p failingPinger) Ping(context.Context) error { return p.err }

func TestHealthLiveAlwaysOK(t *testing.T) {
	ctrl := NewHealthController(failingPinger{}, failingPinger{}, ctrlTestLogger())

	rec := httptest.NewRecorder()
	ctrl.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthReadyDegradesWhenDBDown(t *testing.T) {
	ctrl := NewHealthController(failingPinger{err: assert.AnError}, failingPinger{}, ctrlTestLogger())

	rec := httptest.NewRecorder()
	ctrl.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	checks, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "unreachable", checks["db"])
	assert.Equal(t, "ok", checks["redis"])
}

type stubCartService struct {
	view    *cart.View
	addErr  error
	lastAdd cart.AddItemInput
}

func (s *stubCartService) GetCart(_ context.Context, cartID string) *cart.View {
	if s.view != nil {
		return s.view
	}
	return cart.EmptyView(cartID)
}

func (s *stubCartService) AddToCart(_ context.Context, cartID string, input cart.AddItemInput) (*cart.View, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.lastAdd = input
	return cart.EmptyView(cartID), nil
}

func (s *stubCartService) UpdateItem(_ context.Context, cartID string, _ uuid.UUID, _ int) (*cart.View, error) {
	return cart.EmptyView(cartID), nil
}

func (s *stubCartService) RemoveItem(_ context.Context, cartID string, _ uuid.UUID) (*cart.View, error) {
	return cart.EmptyView(cartID), nil
}

func (s *stubCartService) Clear(context.Context, string) error { return nil }

func (s *stubCartService) Transfer(_ context.Context, _, toCartID string) (*cart.View, error) {
	return cart.EmptyView(toCartID), nil
}

func cartRequestWithIdentity(t *testing.T, method, target, body string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return httptest.NewRequest(method, target, reader)
}

func testCartIdentity(cartID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithCartID(r.Context(), cartID)))
		})
	}
}

func TestCartAddItemRejectsBadProductID(t *testing.T) {
	ctrl := NewCartController(&stubCartService{}, ctrlTestLogger())

	router := chi.NewRouter()
	router.Use(testCartIdentity("guest-token"))
	router.Post("/cart/items", ctrl.AddItem)

	req := cartRequestWithIdentity(t, http.MethodPost, "/cart/items", `{"product_id":"not-a-uuid"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartAddItemHappyPath(t *testing.T) {
	stub := &stubCartService{}
	ctrl := NewCartController(stub, ctrlTestLogger())

	router := chi.NewRouter()
	router.Use(testCartIdentity("guest-token"))
	router.Post("/cart/items", ctrl.AddItem)

	productID := uuid.New()
	req := cartRequestWithIdentity(t, http.MethodPost, "/cart/items", `{"product_id":"`+productID.String()+`","quantity":3}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, productID, stub.lastAdd.ProductID)
	assert.Equal(t, 3, stub.lastAdd.Quantity)
	assert.Nil(t, stub.lastAdd.VariantID)
}

type stubOrdersService struct {
	lastFilters orders.AdminFilters
	updated     []string
}

func (s *stubOrdersService) ListByUser(context.Context, uuid.UUID, pagination.Params) (*orders.UserOrderList, error) {
	return &orders.UserOrderList{Orders: []orders.UserOrderSummary{}, Meta: pagination.NewMeta(0, pagination.Params{Page: 1, Limit: 20})}, nil
}

func (s *stubOrdersService) FindByIDForUser(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s *stubOrdersService) AdminList(_ context.Context, params pagination.Params, filters orders.AdminFilters) (*orders.AdminOrderList, error) {
	s.lastFilters = filters
	return &orders.AdminOrderList{Orders: []models.Order{}, Meta: pagination.NewMeta(0, params)}, nil
}

func (s *stubOrdersService) AdminDetail(context.Context, uuid.UUID) (*orders.AdminOrderDetail, error) {
	return &orders.AdminOrderDetail{}, nil
}

func (s *stubOrdersService) AdminUpdateStatus(_ context.Context, _ uuid.UUID, status string) (*models.Order, error) {
	s.updated = append(s.updated, status)
	return &models.Order{Status: enums.OrderStatus(status)}, nil
}

func TestAdminListParsesFilters(t *testing.T) {
	stub := &stubOrdersService{}
	ctrl := NewAdminOrdersController(stub, ctrlTestLogger())

	router := chi.NewRouter()
	router.Get("/admin/orders", ctrl.List)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/admin/orders?status=pending&payment_status=completed&search=priya&from_date=2026-01-01&to_date=2026-01-31", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.lastFilters.Status)
	assert.Equal(t, enums.OrderStatusPending, *stub.lastFilters.Status)
	require.NotNil(t, stub.lastFilters.PaymentStatus)
	assert.Equal(t, enums.PaymentStatusCompleted, *stub.lastFilters.PaymentStatus)
	assert.Equal(t, "priya", stub.lastFilters.Search)
	require.NotNil(t, stub.lastFilters.DateFrom)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), *stub.lastFilters.DateFrom)
	require.NotNil(t, stub.lastFilters.DateTo)
	got := *stub.lastFilters.DateTo
	assert.Equal(t, 31, got.Day())
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())
	assert.Equal(t, 59, got.Second())
}

func TestAdminListRejectsUnknownStatus(t *testing.T) {
	ctrl := NewAdminOrdersController(&stubOrdersService{}, ctrlTestLogger())

	router := chi.NewRouter()
	router.Get("/admin/orders", ctrl.List)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders?status=refunded", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUpdateStatusRoutesBody(t *testing.T) {
	stub := &stubOrdersService{}
	ctrl := NewAdminOrdersController(stub, ctrlTestLogger())

	router := chi.NewRouter()
	router.Post("/admin/orders/{orderId}/status", ctrl.UpdateStatus)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/"+uuid.NewString()+"/status",
		strings.NewReader(`{"status":"shipped"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"shipped"}, stub.updated)
}
