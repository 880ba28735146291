package payment

import "irokart-be/internal/apperr"

var (
	ErrMinimumAmount      = apperr.Validationf("Minimum amount is ₹1 (100 paise)")
	ErrGatewayUnavailable = apperr.New(apperr.Upstream, "Payment gateway error")
	ErrSignatureMismatch  = apperr.Validationf("Signature mismatch")
	ErrPaymentNotFound    = apperr.NotFoundf("payment not found")
	ErrGatewayNotConfig   = apperr.New(apperr.Internal, "payment gateway is not configured")
)
