package payment

import (
	"context"
	"strings"
	"time"

	"irokart-be/internal/logger"
	"irokart-be/internal/metrics"
	"irokart-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*GatewayOrder, error)
	Verify(ctx context.Context, in VerifyInput) VerifyResult
	VerifySignature(orderID, paymentID, signature string) bool
}

type service struct {
	gateway   Gateway
	keySecret string
	currency  string
	now       func() time.Time
}

func NewService(gateway Gateway, keySecret, currency string) Service {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &service{gateway: gateway, keySecret: keySecret, currency: currency, now: time.Now}
}

// CreateOrder opens a gateway order for amount paise.
func (s *service) CreateOrder(ctx context.Context, in CreateOrderInput) (*GatewayOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
	)

	if in.Amount < MinAmountPaise {
		return nil, ErrMinimumAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.currency
	}

	order, err := s.gateway.CreateOrder(ctx, in.Amount, currency, utils.GatewayReceipt(s.now()))
	if err != nil {
		log.Error("gateway order failed", zap.Error(err))
		return nil, err
	}

	metrics.Default().Counter(metrics.GatewayOrdersCreated).Inc()
	return order, nil
}

func (s *service) Verify(ctx context.Context, in VerifyInput) VerifyResult {
	if s.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		metrics.Default().Counter(metrics.PaymentsVerified).Inc()
		return VerifyResult{Verified: true}
	}

	metrics.Default().Counter(metrics.PaymentSignatureFailures).Inc()
	logger.FromCtx(ctx).Warn("payment signature mismatch",
		zap.String("gateway_order_id", in.OrderID),
		zap.String("gateway_payment_id", in.PaymentID),
	)
	return VerifyResult{Verified: false, Error: "Signature mismatch"}
}

func (s *service) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(s.keySecret, orderID, paymentID, signature)
}
