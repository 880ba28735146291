package inventory

import "irokart-be/internal/apperr"

var (
	ErrInsufficientStock = apperr.Conflictf("insufficient stock")
	ErrBelowReserved     = apperr.Conflictf("quantity cannot be lower than reserved quantity")
	ErrNegativeQuantity  = apperr.Validationf("quantity must be zero or more")
	ErrNotTracked        = apperr.NotFoundf("inventory not found")
)
