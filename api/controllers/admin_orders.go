package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cartloom/cartloom-backend/api/responses"
	"github.com/cartloom/cartloom-backend/api/validators"
	"github.com/cartloom/cartloom-backend/internal/orders"
	"github.com/cartloom/cartloom-backend/pkg/enums"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	"github.com/cartloom/cartloom-backend/pkg/pagination"
)

// AdminOrdersController serves the order console. All routes sit
// behind RequireRole("admin").
type AdminOrdersController struct {
	service orders.Service
	logg    *logger.Logger
}

func NewAdminOrdersController(service orders.Service, logg *logger.Logger) *AdminOrdersController {
	return &AdminOrdersController{service: service, logg: logg}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (c *AdminOrdersController) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.Params{
		Page:  validators.ParseQueryInt(r, "page", 1),
		Limit: validators.ParseQueryInt(r, "limit", pagination.DefaultLimit),
	}

	filters, err := adminFiltersFromQuery(r)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}

	list, err := c.service.AdminList(r.Context(), params, filters)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, list)
}

func (c *AdminOrdersController) Detail(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
		return
	}

	detail, err := c.service.AdminDetail(r.Context(), orderID)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, detail)
}

func (c *AdminOrdersController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
		return
	}

	var req updateStatusRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}

	order, err := c.service.AdminUpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, order)
}

func adminFiltersFromQuery(r *http.Request) (orders.AdminFilters, error) {
	query := r.URL.Query()
	filters := orders.AdminFilters{
		Search: strings.TrimSpace(query.Get("search")),
	}

	if status := strings.TrimSpace(query.Get("status")); status != "" {
		parsed, err := enums.ParseOrderStatus(status)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status filter")
		}
		filters.Status = &parsed
	}
	if paymentStatus := strings.TrimSpace(query.Get("payment_status")); paymentStatus != "" {
		parsed, err := enums.ParsePaymentStatus(paymentStatus)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status filter")
		}
		filters.PaymentStatus = &parsed
	}
	if from := strings.TrimSpace(query.Get("from_date")); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "from_date must be YYYY-MM-DD")
		}
		filters.DateFrom = &parsed
	}
	if to := strings.TrimSpace(query.Get("to_date")); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "to_date must be YYYY-MM-DD")
		}
		normalized := orders.NormalizeDateTo(parsed)
		filters.DateTo = &normalized
	}
	return filters, nil
}
