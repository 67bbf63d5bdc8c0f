package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemView is one rendered cart line joined with live catalog data.
type ItemView struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	Name        string          `json:"name"`
	VariantName *string         `json:"variant_name,omitempty"`
	Image       string          `json:"image,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	InStock     bool            `json:"in_stock"`
}

// View is the rendered cart returned to clients.
type View struct {
	CartID     string          `json:"cart_id"`
	Items      []ItemView      `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// EmptyView returns a zero-valued cart for the given id.
func EmptyView(cartID string) *View {
	return &View{
		CartID:     cartID,
		Items:      []ItemView{},
		TotalItems: 0,
		Subtotal:   decimal.Zero,
	}
}

// AddItemInput captures a cart mutation request.
type AddItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}
