package order

import (
	"time"

	"irokart-be/internal/address"
	"irokart-be/internal/payment"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusConfirmed       Status = "confirmed"
	StatusProcessing      Status = "processing"
	StatusShipped         Status = "shipped"
	StatusOutForDelivery  Status = "out_for_delivery"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
	StatusReturnRequested Status = "return_requested"
	StatusReturned        Status = "returned"
	StatusRefunded        Status = "refunded"
)

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

type FulfillmentStatus string

const (
	FulfillmentPending    FulfillmentStatus = "pending"
	FulfillmentProcessing FulfillmentStatus = "processing"
	FulfillmentFulfilled  FulfillmentStatus = "fulfilled"
	FulfillmentCancelled  FulfillmentStatus = "cancelled"
	FulfillmentReturned   FulfillmentStatus = "returned"
)

const (
	OrderTypeIndividual = "individual"
	ItemTypePhysical    = "physical"
	ItemTypeDigital     = "digital"

	DefaultListLimit = 50
	MaxListLimit     = 200
)

type Order struct {
	ID              string           `json:"id"`
	OrderNumber     string           `json:"order_number"`
	ProfileID       string           `json:"profile_id"`
	OrderType       string           `json:"order_type"`
	ShippingAddress address.Snapshot `json:"shipping_address_snapshot"`
	BillingAddress  address.Snapshot `json:"billing_address_snapshot"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount"`
	TaxAmount       decimal.Decimal  `json:"tax_amount"`
	ShippingAmount  decimal.Decimal  `json:"shipping_amount"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Status          Status           `json:"order_status"`
	PaymentStatus   payment.Status   `json:"payment_status"`
	CustomerNote    *string          `json:"customer_note"`
	AdminNote       *string          `json:"admin_note"`
	TrackingNumber  *string          `json:"tracking_number"`
	CourierCompany  *string          `json:"courier_company"`
	DeliveredAt     *time.Time       `json:"delivered_at"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	Items    []*Item            `json:"order_items,omitempty"`
	Customer *Customer          `json:"profiles,omitempty"`
	Payments []*payment.Payment `json:"payments,omitempty"`
}

type Item struct {
	ID                string            `json:"id"`
	OrderID           string            `json:"order_id"`
	ProductID         string            `json:"product_id"`
	SellerID          *string           `json:"seller_id"`
	ProductName       string            `json:"product_name"`
	ProductSKU        *string           `json:"product_sku"`
	ProductImageURL   *string           `json:"product_image_url"`
	Quantity          int               `json:"quantity"`
	UnitPrice         decimal.Decimal   `json:"unit_price"`
	CostPrice         decimal.Decimal   `json:"cost_price"`
	DiscountAmount    decimal.Decimal   `json:"discount_amount"`
	TaxAmount         decimal.Decimal   `json:"tax_amount"`
	TotalPrice        decimal.Decimal   `json:"total_price"`
	ItemType          string            `json:"item_type"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
}

func (i *Item) TracksStock() bool {
	return i.ItemType != ItemTypeDigital
}

// Customer is the slice of the buyer's profile shown next to an order.
type Customer struct {
	FullName  *string `json:"full_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	UserType  *string `json:"user_type"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

type ListResult struct {
	Orders []*Order `json:"orders"`
	Total  int      `json:"total"`
}

// PlaceItemInput is one checkout line as the client sent it. Only the
// product id and quantity are trusted; the rest is a display echo.
type PlaceItemInput struct {
	ProductID       string           `json:"product_id"`
	SellerID        *string          `json:"seller_id"`
	ProductName     string           `json:"product_name"`
	ProductImageURL *string          `json:"product_image_url"`
	SKU             *string          `json:"sku"`
	Quantity        int              `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	TotalPrice      *decimal.Decimal `json:"total_price"`
}

type PaymentInfo struct {
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewaySignature string `json:"gateway_signature"`
	PaymentMethod    string `json:"payment_method"`
	PaymentGateway   string `json:"payment_gateway"`
}

type PlaceOrderInput struct {
	ProfileID       string            `json:"profile_id"`
	ShippingAddress *address.Snapshot `json:"shipping_address"`
	BillingAddress  *address.Snapshot `json:"billing_address"`
	Subtotal        *decimal.Decimal  `json:"subtotal"`
	ShippingAmount  *decimal.Decimal  `json:"shipping_amount"`
	TaxAmount       *decimal.Decimal  `json:"tax_amount"`
	DiscountAmount  *decimal.Decimal  `json:"discount_amount"`
	TotalAmount     *decimal.Decimal  `json:"total_amount"`
	Items           []PlaceItemInput  `json:"items"`
	PaymentInfo     PaymentInfo       `json:"payment_info"`
	CustomerNote    *string           `json:"customer_note"`
}

type PlaceResult struct {
	Success     bool   `json:"success"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// StatusUpdate is an admin status change. Nil fields are left untouched.
type StatusUpdate struct {
	Status         Status  `json:"order_status"`
	AdminNote      *string `json:"admin_note"`
	TrackingNumber *string `json:"tracking_number"`
	CourierCompany *string `json:"courier_company"`
}
