package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cartloom/cartloom-backend/api/middleware"
	"github.com/cartloom/cartloom-backend/api/responses"
	"github.com/cartloom/cartloom-backend/api/validators"
	"github.com/cartloom/cartloom-backend/internal/checkout"
	"github.com/cartloom/cartloom-backend/internal/orders"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	"github.com/cartloom/cartloom-backend/pkg/pagination"
)

// OrdersController serves the customer-facing order reads plus the
// pending-payment recovery endpoint.
type OrdersController struct {
	orders   orders.Service
	checkout checkout.Service
	logg     *logger.Logger
}

func NewOrdersController(ordersSvc orders.Service, checkoutSvc checkout.Service, logg *logger.Logger) *OrdersController {
	return &OrdersController{orders: ordersSvc, checkout: checkoutSvc, logg: logg}
}

func (c *OrdersController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	params := pagination.Params{
		Page:  validators.ParseQueryInt(r, "page", 1),
		Limit: validators.ParseQueryInt(r, "limit", pagination.DefaultLimit),
	}

	list, err := c.orders.ListByUser(r.Context(), userID, params)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, list)
}

func (c *OrdersController) Detail(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
		return
	}

	order, err := c.orders.FindByIDForUser(r.Context(), orderID, userID)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, order)
}

// PendingPayment returns fresh checkout widget params for an order the
// caller has not paid yet.
func (c *OrdersController) PendingPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
		return
	}

	params, err := c.checkout.PendingPaymentData(r.Context(), userID, orderID)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, params)
}
