package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cartloom/cartloom-backend/pkg/types"
)

// OrderItem is an immutable line snapshot taken at checkout.
type OrderItem struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	VariantID   *uuid.UUID            `gorm:"column:variant_id;type:uuid"`
	SKU         string                `gorm:"column:sku;not null"`
	Name        string                `gorm:"column:name;not null"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity    int                   `gorm:"column:quantity;not null"`
	TotalPrice  decimal.Decimal       `gorm:"column:total_price;type:numeric(12,2);not null"`
	ProductData types.ProductSnapshot `gorm:"column:product_data;type:jsonb;serializer:json"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
