package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders errors as {"error", "request_id"}. Errors that are not
// *fiber.Error become a 500 with a generic message.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			code, message = ferr.Code, ferr.Message
		} else {
			logger.Error("unhandled error", slog.String("path", c.Path()), slog.String("request_id", RequestIDFrom(c)), slog.Any("error", err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error":      message,
			"request_id": RequestIDFrom(c),
		})
	}
}
