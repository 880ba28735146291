package user

import "irokart-be/internal/apperr"

var (
	ErrEmailPasswordRequired = apperr.Validationf("Email and password are required")
	ErrWeakPassword          = apperr.Validationf("Password should be at least 6 characters")
	ErrEmailExists           = apperr.Validationf("A user with this email address has already been registered")
	ErrUIDRequired           = apperr.Validationf("uid is required")
	ErrInvalidUID            = apperr.Validationf("uid must be a valid id")
	ErrInvalidUserType       = apperr.Validationf("invalid user_type")
	ErrInvalidAccountStatus  = apperr.Validationf("invalid account_status")

	ErrInvalidCredentials = apperr.New(apperr.Unauthorized, "Invalid login credentials")
	ErrAccountSuspended   = apperr.New(apperr.Forbidden, "Account is suspended")

	ErrUserNotFound    = apperr.NotFoundf("user not found")
	ErrProfileNotFound = apperr.NotFoundf("profile not found")
)
