package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/patcharw/ecommerce-backend/internal/httperr"
	"github.com/patcharw/ecommerce-backend/internal/user"
)

// RequireAdmin rejects requests whose JWT does not carry the ADMIN role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := user.GetRoleFromCtx(c)
		if err != nil {
			return httperr.Unauthorized(c)
		}
		if role != user.RoleAdmin {
			return httperr.Forbidden(c, "admin role required")
		}
		return c.Next()
	}
}
