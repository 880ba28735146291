package product

import "irokart-be/internal/apperr"

var (
	ErrProductNotFound     = apperr.NotFoundf("Product not found")
	ErrNameRequired        = apperr.Validationf("Product name is required")
	ErrCategoryRequired    = apperr.Validationf("Category is required")
	ErrInvalidCategory     = apperr.Validationf("invalid category_id")
	ErrInvalidSellingPrice = apperr.Validationf("A valid selling price is required")
	ErrInvalidSlug         = apperr.Validationf("slug must contain letters or digits")
	ErrSlugTaken           = apperr.Validationf("A product with this slug already exists")
	ErrInvalidStatus       = apperr.Validationf("invalid product_status")
	ErrInvalidType         = apperr.Validationf("invalid product_type")
	ErrEmptyPatch          = apperr.Validationf("no fields to update")
	ErrInvalidQuantity     = apperr.Validationf("quantity must be zero or greater")
	ErrInvalidThreshold    = apperr.Validationf("low_stock_threshold must be greater than 0")
)
