package middleware

import (
	"log"
	"strings"

	"blog/internal/models"
	"blog/internal/services"

	"github.com/gofiber/fiber/v2"
)

const currentUserKey = "current_user"

// AuthRequired resolves the acting user from the bearer token and stores it in
// the request locals. The resolution runs once per request, before any handler
// touches the post store; handlers pass the user explicitly into service calls.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := authService.Authenticate(parts[1])
		if err != nil {
			log.Printf("Authentication failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by AuthRequired, or nil on routes that
// did not pass through it.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}
