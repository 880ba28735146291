package cart

import (
	"irokart-be/internal/product"

	"github.com/shopspring/decimal"
)

// Line is one product and quantity as sent for pricing.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Problem string

const (
	ProblemNotFound          Problem = "not_found"
	ProblemInactive          Problem = "inactive"
	ProblemInsufficientStock Problem = "insufficient_stock"
)

type QuoteLine struct {
	ProductID         string          `json:"product_id"`
	SellerID          *string         `json:"seller_id"`
	ProductName       string          `json:"product_name"`
	SKU               *string         `json:"sku"`
	ProductImageURL   *string         `json:"product_image_url"`
	ProductType       product.Type    `json:"product_type,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	AvailableQuantity int             `json:"available_quantity"`
	Problem           Problem         `json:"problem,omitempty"`
}

// TracksStock is false for digital goods.
func (l *QuoteLine) TracksStock() bool {
	return l.ProductType != product.TypeDigital
}

type Quote struct {
	Lines          []*QuoteLine    `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ItemCount      int             `json:"item_count"`
	OK             bool            `json:"ok"`
}

// Err reports the first line problem as a typed error, or nil when every
// line can be bought.
func (q *Quote) Err() error {
	for _, l := range q.Lines {
		switch l.Problem {
		case ProblemNotFound:
			return productNotFound(l.ProductID)
		case ProblemInactive:
			return productUnavailable(l.ProductName)
		case ProblemInsufficientStock:
			return insufficientStock(l.ProductName, l.AvailableQuantity)
		}
	}
	return nil
}

// Pricing holds the checkout shipping rule.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(999),
		FlatShippingFee:       decimal.NewFromInt(99),
	}
}

// Shipping is free at or above the threshold and flat below it. An empty
// order ships for nothing.
func (p Pricing) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatShippingFee
}
