package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/classwork-go/internal/utils"
)

// RequireRole guards a route group behind an authenticated user holding
// the given role. JWTProtected must run first.
func RequireRole(role string) fiber.Handler {
	expected := strings.ToLower(strings.TrimSpace(role))

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		current, _ := c.Locals("user_role").(string)
		if strings.ToLower(strings.TrimSpace(current)) != expected {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		return c.Next()
	}
}

// RequireAuth guards a route behind any authenticated user.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		return c.Next()
	}
}
