package middlewares

import (
	"errors"
	"log"

	"mediverse-backend/billing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors (422 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Billing engine taxonomy. Conflicts get 409 so callers know to
	// refetch and retry with fresh state; the engine itself never retries.
	if status, ok := billingStatus(err); ok {
		return c.Status(status).JSON(fiber.Map{"message": err.Error()})
	}

	// 4) Unknown errors (500)
	log.Printf("internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}

func billingStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, billing.ErrInvalidQuantity),
		errors.Is(err, billing.ErrInvalidDiscount),
		errors.Is(err, billing.ErrInvalidPayment),
		errors.Is(err, billing.ErrInvalidAmount),
		errors.Is(err, billing.ErrEmptySession):
		return fiber.StatusBadRequest, true
	case errors.Is(err, billing.ErrAlreadyInvoiced),
		errors.Is(err, billing.ErrCustomerMismatch),
		errors.Is(err, billing.ErrOverPayment),
		errors.Is(err, billing.ErrInsufficientStock):
		return fiber.StatusConflict, true
	case errors.Is(err, billing.ErrNotFound):
		return fiber.StatusNotFound, true
	}
	return 0, false
}
