package entity

import "errors"

// Domain errors raised by services and repositories. Handlers translate them
// to the nearest HTTP status family.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")

	ErrEmailTaken        = errors.New("email already in use")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrInvalidCredentials = errors.New("invalid credentials")
)
