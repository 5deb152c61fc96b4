// Package utils holds the error shape shared by the admin-style endpoints.
package utils

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
)

// APIError is the wire shape for handler failures. Handlers return it and
// the app-level ErrorHandler serializes it; the status code itself never
// appears in the body.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewBadRequestError(message string, details any) *APIError {
	return &APIError{
		StatusCode: fiber.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		Details:    details,
	}
}

// NewValidationError flags one rejected input field so the admin screen can
// highlight it.
func NewValidationError(message, field string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    message,
		Details:    fiber.Map{"field": field},
	}
}

func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

func NewNotFoundError(resource string) *APIError {
	return &APIError{
		StatusCode: fiber.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError hides the cause from the message but carries it in the
// details for log correlation.
func NewInternalError(err error) *APIError {
	return &APIError{
		StatusCode: fiber.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    "An internal error occurred",
		Details:    err.Error(),
	}
}

// ErrorHandler renders APIError values; anything else becomes a 500.
func ErrorHandler(c fiber.Ctx, err error) error {
	apiErr, ok := err.(*APIError)
	if !ok {
		apiErr = NewInternalError(err)
	}

	return c.Status(apiErr.StatusCode).JSON(apiErr)
}
