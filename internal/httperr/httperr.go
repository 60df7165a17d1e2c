package httperr

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Response is the structured error payload returned to API clients.
type Response struct {
	Status  int    `json:"status"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

func write(c *fiber.Ctx, status int, title, message string) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Title:   title,
		Message: message,
		Path:    c.Path(),
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return write(c, fiber.StatusBadRequest, "Bad Request", message)
}

func Unauthorized(c *fiber.Ctx) error {
	return write(c, fiber.StatusUnauthorized, "Unauthorized", "authentication required")
}

func Forbidden(c *fiber.Ctx, message string) error {
	return write(c, fiber.StatusForbidden, "Forbidden", message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return write(c, fiber.StatusNotFound, "Not Found", message)
}

func Conflict(c *fiber.Ctx, message string) error {
	return write(c, fiber.StatusConflict, "Conflict", message)
}

// Internal logs the underlying error server-side and returns a generic
// payload so internals never leak to the caller.
func Internal(c *fiber.Ctx, err error) error {
	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("unhandled error")
	return write(c, fiber.StatusInternalServerError, "Internal Server Error", "something went wrong")
}
