package inventory

import "time"

const DefaultLowStockThreshold = 10

type StockStatus string

const (
	InStock    StockStatus = "in_stock"
	LowStock   StockStatus = "low_stock"
	OutOfStock StockStatus = "out_of_stock"
)

// Level is the stock row of one product. Available stock is
// Quantity - ReservedQuantity and ReservedQuantity never exceeds Quantity.
type Level struct {
	ProductID         string    `json:"product_id"`
	Quantity          int       `json:"quantity"`
	ReservedQuantity  int       `json:"reserved_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (l *Level) Available() int {
	if l == nil {
		return 0
	}
	return l.Quantity - l.ReservedQuantity
}

func (l *Level) Threshold() int {
	if l == nil || l.LowStockThreshold <= 0 {
		return DefaultLowStockThreshold
	}
	return l.LowStockThreshold
}

func (l *Level) Status() StockStatus {
	switch {
	case l.Available() <= 0:
		return OutOfStock
	case l.Quantity <= l.Threshold():
		return LowStock
	default:
		return InStock
	}
}
