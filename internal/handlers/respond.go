package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"panaderia/internal/apperrors"
)

// respondError maps a service error to an HTTP status in one place.
// Internal causes are logged, never returned to the caller.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		log.Printf("unexpected error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	var status int
	switch appErr.Code {
	case apperrors.CodeValidation, apperrors.CodeInsufficientStock:
		status = fiber.StatusBadRequest
	case apperrors.CodeNotFound:
		status = fiber.StatusNotFound
	case apperrors.CodeUnauthenticated:
		status = fiber.StatusUnauthorized
	case apperrors.CodeForbidden:
		status = fiber.StatusForbidden
	case apperrors.CodeConflict:
		status = fiber.StatusConflict
	default:
		log.Printf("internal error: %v", appErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": appErr.Message,
		})
	}

	body := fiber.Map{"message": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	for k, v := range appErr.Details {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// respondValidationErrors renders validator failures with one message per
// violated field.
func respondValidationErrors(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// parseID reads a positive integer id path parameter.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, apperrors.Validationf("invalid id '%s'", c.Params("id"))
	}
	return uint(id), nil
}
