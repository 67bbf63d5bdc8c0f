package types

import "github.com/shopspring/decimal"

// ProductSnapshot captures the product as it was sold. Order items
// keep this jsonb copy so later catalog edits do not rewrite history
// and the order can still reconstruct pricing, tax, and the listing.
type ProductSnapshot struct {
	ProductID     string           `json:"product_id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	TaxRate       *decimal.Decimal `json:"tax_rate,omitempty"`
	Images        []string         `json:"images,omitempty"`
	VariantID     *string          `json:"variant_id,omitempty"`
	VariantName   *string          `json:"variant_name,omitempty"`
	VariantPrice  *decimal.Decimal `json:"variant_price,omitempty"`
}
