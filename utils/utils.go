package utils

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse creates a standardized error response. Pass a non-nil err
// only where leaking the underlying cause is acceptable (health check);
// business endpoints must pass nil.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}
