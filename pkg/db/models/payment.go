package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cartloom/cartloom-backend/pkg/enums"
)

// Payment is the append-only gateway audit row written once a payment
// verifies. Payload carries the raw provider object for reconciliation.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	GatewayOrderID   string              `gorm:"column:gateway_order_id;not null"`
	GatewayPaymentID string              `gorm:"column:gateway_payment_id;not null;uniqueIndex"`
	Signature        string              `gorm:"column:signature;not null"`
	Amount           decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency         string              `gorm:"column:currency;not null"`
	Method           string              `gorm:"column:method"`
	Status           enums.PaymentStatus `gorm:"column:status;not null"`
	Payload          map[string]any      `gorm:"column:payload;type:jsonb;serializer:json"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
