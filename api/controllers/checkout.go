package controllers

import (
	"net/http"

	"github.com/cartloom/cartloom-backend/api/middleware"
	"github.com/cartloom/cartloom-backend/api/responses"
	"github.com/cartloom/cartloom-backend/api/validators"
	"github.com/cartloom/cartloom-backend/internal/checkout"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	"github.com/cartloom/cartloom-backend/pkg/types"
)

// CheckoutController drives order creation and payment verification.
type CheckoutController struct {
	service checkout.Service
	logg    *logger.Logger
}

func NewCheckoutController(service checkout.Service, logg *logger.Logger) *CheckoutController {
	return &CheckoutController{service: service, logg: logg}
}

type createOrderRequest struct {
	ShippingAddress      types.Address `json:"shipping_address" validate:"required"`
	BillingAddress       *types.Address `json:"billing_address"`
	UseShippingAsBilling bool          `json:"use_shipping_as_billing"`
	PaymentMethod        string        `json:"payment_method" validate:"required"`
	CustomerNote         *string       `json:"customer_note"`
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

func (c *CheckoutController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req createOrderRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}

	params, err := c.service.CreateOrder(r.Context(), userID, checkout.CreateOrderInput{
		ShippingAddress:      req.ShippingAddress,
		BillingAddress:       req.BillingAddress,
		UseShippingAsBilling: req.UseShippingAsBilling,
		PaymentMethod:        req.PaymentMethod,
		CustomerNote:         req.CustomerNote,
	})
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, params)
}

func (c *CheckoutController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req verifyPaymentRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}

	result, err := c.service.VerifyPayment(r.Context(), checkout.VerifyInput{
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
	})
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, result)
}
