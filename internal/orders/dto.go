package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cartloom/cartloom-backend/pkg/db/models"
	"github.com/cartloom/cartloom-backend/pkg/enums"
	"github.com/cartloom/cartloom-backend/pkg/pagination"
)

// AdminFilters describe the inputs supported by the admin orders list.
// The same filter set drives both the page query and the total count.
type AdminFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	Search        string
	DateFrom      *time.Time
	DateTo        *time.Time
}

// NormalizeDateTo pushes a date-only upper bound to the end of that day
// so a filter like to=2026-02-10 includes orders placed during the day.
func NormalizeDateTo(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// UserSummary is the minimal customer projection shown in the console.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AdminOrderList wraps the paginated orders plus pagination meta.
type AdminOrderList struct {
	Orders []models.Order  `json:"orders"`
	Meta   pagination.Meta `json:"meta"`
}

// AdminOrderDetail is the full console view of one order.
type AdminOrderDetail struct {
	Order models.Order `json:"order"`
	User  *UserSummary `json:"user,omitempty"`
}

// UserOrderSummary is the customer-facing list projection.
type UserOrderSummary struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	GrandTotal    decimal.Decimal     `json:"grand_total"`
	TotalItems    int                 `json:"total_items"`
	CreatedAt     time.Time           `json:"created_at"`
}

// UserOrderList wraps the customer's paginated orders.
type UserOrderList struct {
	Orders []UserOrderSummary `json:"orders"`
	Meta   pagination.Meta    `json:"meta"`
}
