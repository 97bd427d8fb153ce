package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/caotrungduc03/banking-app/internal/adapter/storage"
	"github.com/caotrungduc03/banking-app/internal/core/security"
)

// Protected resolves the API key to the calling account and stores its id
// in request locals. Handlers must take the sender from there, never from
// the request body or a decoded payload.
func Protected(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing API key"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid header format"})
		}

		// We never compare plain text, only hashes.
		accountID, err := store.AccountIDForKeyHash(c.Context(), security.HashKey(parts[1]))
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid API key"})
		}

		c.Locals("account_id", accountID)
		return c.Next()
	}
}
