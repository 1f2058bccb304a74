package middleware

import (
	"log"
	"strings"

	"kickoff-api/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the caller's JWT and stashes the user id in
// c.Locals("user_id"). Every match route and the user-profile routes sit
// behind it; register/login do not.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Authorization header",
			})
		}

		// Accept "Bearer <token>" and a raw token, the webapp sends both.
		token := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := utils.VerifyToken(token)
		if err != nil {
			log.Printf("🚫 [AUTH] rejected token for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// UserID pulls the authenticated user id set by AuthMiddleware.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("user_id").(uint)
	return id
}
