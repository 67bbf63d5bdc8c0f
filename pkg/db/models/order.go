package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cartloom/cartloom-backend/pkg/enums"
	"github.com/cartloom/cartloom-backend/pkg/types"
)

// Order is the checkout aggregate. Address and payment fields are jsonb
// snapshots frozen at creation/verification time. GatewayOrderID is kept
// as its own indexed column because payment verification looks orders up
// by it.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string                `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	CartID          string                `gorm:"column:cart_id;type:text;not null"`
	Status          enums.OrderStatus     `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus   `gorm:"column:payment_status;not null;default:'pending'"`
	SubTotal        decimal.Decimal       `gorm:"column:sub_total;type:numeric(12,2);not null"`
	TaxAmount       decimal.Decimal       `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	ShippingAmount  decimal.Decimal       `gorm:"column:shipping_amount;type:numeric(12,2);not null"`
	DiscountAmount  decimal.Decimal       `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	GrandTotal      decimal.Decimal       `gorm:"column:grand_total;type:numeric(12,2);not null"`
	ShippingAddress types.Address         `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  types.Address         `gorm:"column:billing_address;type:jsonb;serializer:json"`
	PaymentMethod   string                `gorm:"column:payment_method;not null"`
	GatewayOrderID  *string               `gorm:"column:gateway_order_id;index"`
	PaymentDetails  *types.PaymentDetails `gorm:"column:payment_details;type:jsonb;serializer:json"`
	CustomerNote    *string               `gorm:"column:customer_note"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
