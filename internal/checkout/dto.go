package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cartloom/cartloom-backend/pkg/types"
)

// CreateOrderInput is the validated checkout request.
type CreateOrderInput struct {
	ShippingAddress      types.Address
	BillingAddress       *types.Address
	UseShippingAsBilling bool
	PaymentMethod        string
	CustomerNote         *string
}

// Prefill carries the customer hints passed to the gateway widget.
type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Params is everything the storefront needs to open the payment
// widget: the public key, the amount in minor units, and the gateway
// order reference.
type Params struct {
	Key            string          `json:"key"`
	Amount         int64           `json:"amount"`
	Currency       string          `json:"currency"`
	GatewayOrderID string          `json:"gateway_order_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	StoreName      string          `json:"store_name"`
	Description    string          `json:"description"`
	Prefill        Prefill         `json:"prefill"`
	AddressNote    string          `json:"address_note,omitempty"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// VerifyInput is the gateway callback payload.
type VerifyInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// VerifyResult reports the post-verification order state.
type VerifyResult struct {
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	AlreadyPaid   bool      `json:"already_paid,omitempty"`
}
