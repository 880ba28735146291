package payment

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending           Status = "pending"
	StatusInitiated         Status = "initiated"
	StatusCaptured          Status = "captured"
	StatusFailed            Status = "failed"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

// Accepts reports whether a gateway event may move a payment from s to next.
// Webhooks arrive out of order, so a refund is never undone and a capture is
// never downgraded to a failure.
func (s Status) Accepts(next Status) bool {
	switch s {
	case StatusRefunded:
		return false
	case StatusPartiallyRefunded:
		return next == StatusRefunded || next == StatusPartiallyRefunded
	case StatusCaptured:
		return next != StatusFailed && next != StatusPending && next != StatusInitiated
	}
	return true
}

const (
	ProviderRazorpay = "razorpay"
	DefaultCurrency  = "INR"
	// MinAmountPaise is the smallest order the gateway accepts (one rupee).
	MinAmountPaise = 100
)

type Payment struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	ProfileID        string          `json:"profile_id"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentGateway   string          `json:"payment_gateway"`
	GatewayOrderID   *string         `json:"gateway_order_id"`
	GatewayPaymentID *string         `json:"gateway_payment_id"`
	GatewaySignature *string         `json:"gateway_signature"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           Status          `json:"payment_status"`
	PaidAt           *time.Time      `json:"paid_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// GatewayOrder is the order object the gateway returns. Raw keeps the
// response body so it can be passed to the client unchanged.
type GatewayOrder struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	Amount     int64           `json:"amount"`
	AmountPaid int64           `json:"amount_paid"`
	AmountDue  int64           `json:"amount_due"`
	Currency   string          `json:"currency"`
	Receipt    string          `json:"receipt"`
	Status     string          `json:"status"`
	Attempts   int             `json:"attempts"`
	CreatedAt  int64           `json:"created_at"`
	Raw        json.RawMessage `json:"-"`
}

func (o *GatewayOrder) MarshalJSON() ([]byte, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}
	type plain GatewayOrder
	return json.Marshal((*plain)(o))
}

type CreateOrderInput struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type VerifyInput struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type VerifyResult struct {
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
}
