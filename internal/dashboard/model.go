package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MetricTotalOrders      = "total_orders"
	MetricOrdersToday      = "orders_today"
	MetricPendingOrders    = "pending_orders"
	MetricTotalUsers       = "total_users"
	MetricTotalProducts    = "total_products"
	MetricLowStockProducts = "low_stock_products"
	MetricTotalRevenue     = "total_revenue"
	MetricRevenueThisMonth = "revenue_this_month"

	RecentOrdersLimit = 10
)

// Stats is the admin summary. A metric whose query failed is nil and its
// name is listed in FailedMetrics.
type Stats struct {
	TotalOrders      *int64           `json:"total_orders"`
	OrdersToday      *int64           `json:"orders_today"`
	PendingOrders    *int64           `json:"pending_orders"`
	TotalUsers       *int64           `json:"total_users"`
	TotalProducts    *int64           `json:"total_products"`
	LowStockProducts *int64           `json:"low_stock_products"`
	TotalRevenue     *decimal.Decimal `json:"total_revenue"`
	RevenueThisMonth *decimal.Decimal `json:"revenue_this_month"`
	FailedMetrics    []string         `json:"failed_metrics,omitempty"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

type RecentOrder struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"order_number"`
	OrderStatus   string          `json:"order_status"`
	PaymentStatus string          `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	Profile       *Buyer          `json:"profiles"`
}

type Buyer struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}
