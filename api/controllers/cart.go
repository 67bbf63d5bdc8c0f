package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cartloom/cartloom-backend/api/middleware"
	"github.com/cartloom/cartloom-backend/api/responses"
	"github.com/cartloom/cartloom-backend/api/validators"
	"github.com/cartloom/cartloom-backend/internal/cart"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
)

// CartController serves the cart surface for guests and users alike;
// the cart id in context decides which cart is touched.
type CartController struct {
	service cart.Service
	logg    *logger.Logger
}

func NewCartController(service cart.Service, logg *logger.Logger) *CartController {
	return &CartController{service: service, logg: logg}
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"omitempty,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type transferRequest struct {
	GuestCartID string `json:"guest_cart_id" validate:"required"`
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := middleware.CartIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeInternal, "cart identity not resolved"))
		return
	}
	responses.WriteSuccess(w, http.StatusOK, c.service.GetCart(r.Context(), cartID))
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := middleware.CartIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeInternal, "cart identity not resolved"))
		return
	}

	var req addItemRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
		return
	}
	input := cart.AddItemInput{ProductID: productID, Quantity: req.Quantity}
	if req.VariantID != "" {
		variantID, err := uuid.Parse(req.VariantID)
		if err != nil {
			responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeValidation, "invalid variant id"))
			return
		}
		input.VariantID = &variantID
	}

	view, err := c.service.AddToCart(r.Context(), cartID, input)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, view)
}

func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID, _ := middleware.CartIDFromContext(r.Context())
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id"))
		return
	}

	var req updateItemRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}

	view, err := c.service.UpdateItem(r.Context(), cartID, itemID, req.Quantity)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, view)
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, _ := middleware.CartIDFromContext(r.Context())
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id"))
		return
	}

	view, err := c.service.RemoveItem(r.Context(), cartID, itemID)
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, view)
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	cartID, _ := middleware.CartIDFromContext(r.Context())
	if err := c.service.Clear(r.Context(), cartID); err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, cart.EmptyView(cartID))
}

// Transfer merges the guest cart named in the body into the calling
// user's cart. Auth is required; the target is always the caller.
func (c *CartController) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, r, c.logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req transferRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}

	view, err := c.service.Transfer(r.Context(), req.GuestCartID, userID.String())
	if err != nil {
		responses.WriteError(w, r, c.logg, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, view)
}
