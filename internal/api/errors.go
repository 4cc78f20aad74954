package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"commerce-backend/internal/entity"
	"commerce-backend/internal/payment"
)

// errorJSON translates domain errors to the nearest HTTP status family.
// Unknown errors surface as a generic 500 without leaking internals.
func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, entity.ErrUserNotFound),
		errors.Is(err, entity.ErrProductNotFound),
		errors.Is(err, entity.ErrOrderNotFound),
		errors.Is(err, entity.ErrPaymentNotFound):
		return c.JSON(404, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrEmailTaken),
		errors.Is(err, entity.ErrInsufficientStock):
		return c.JSON(400, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidCredentials):
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	var apiErr *payment.APIError
	if errors.As(err, &apiErr) {
		return c.JSON(400, map[string]string{"error": apiErr.Body})
	}
	if errors.Is(err, payment.ErrUnreachable) {
		return c.JSON(500, map[string]string{"error": "payment gateway unreachable"})
	}

	return c.JSON(500, map[string]string{"error": "internal server error"})
}
