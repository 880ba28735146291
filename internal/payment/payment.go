package payment

import "context"

type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error)
}
