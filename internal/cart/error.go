package cart

import "irokart-be/internal/apperr"

var (
	ErrEmptyCart        = apperr.Validationf("Cart is empty")
	ErrInvalidQuantity  = apperr.Validationf("quantity must be greater than 0")
	ErrMissingProductID = apperr.Validationf("product_id is required")
)

func productNotFound(id string) error {
	return apperr.Validationf("product not found: %s", id)
}

func productUnavailable(name string) error {
	return apperr.Conflictf("%s is no longer available", name)
}

func insufficientStock(name string, available int) error {
	return apperr.Conflictf("insufficient stock for %s (available: %d)", name, available)
}
