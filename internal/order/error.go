package order

import "irokart-be/internal/apperr"

var (
	ErrOrderNotFound     = apperr.NotFoundf("Order not found")
	ErrMissingOrderData  = apperr.Validationf("Missing required order data")
	ErrInvalidItem       = apperr.Validationf("every item needs a product_id and a quantity greater than 0")
	ErrMissingPaymentID  = apperr.Validationf("payment_info.gateway_payment_id is required")
	ErrSignatureMismatch = apperr.Validationf("payment signature mismatch")
	ErrNegativeTax       = apperr.Validationf("tax_amount cannot be negative")
	ErrNegativeDiscount  = apperr.Validationf("discount_amount cannot be negative")
	ErrDiscountExceeds   = apperr.Validationf("discount_amount cannot exceed subtotal")
	ErrProfileNotFound   = apperr.Validationf("profile not found")
	ErrInvalidStatus     = apperr.Validationf("invalid order status")
	ErrInvalidTransition = apperr.Conflictf("invalid order status transition")
	ErrMissingProfileID  = apperr.Validationf("UID is required")
)
