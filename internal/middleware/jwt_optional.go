package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ashanV/bookly-sub002/internal/utils"
)

// OptionalJWT attaches userId/role locals when a valid cookie is present
// and lets the request through either way. Used on the chat surface, which
// serves operators, account holders and widget guests alike.
func OptionalJWT(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies("bk_token")
		if tokenStr == "" {
			return c.Next()
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return c.Next()
		}

		uid := strings.TrimSpace(claims.UserID)
		role := strings.ToLower(strings.TrimSpace(claims.Role))
		if uid != "" {
			c.Locals("userId", uid)
			c.Locals("role", role)
		}
		return c.Next()
	}
}
