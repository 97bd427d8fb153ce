package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/caotrungduc03/banking-app/internal/adapter/storage"
)

// Idempotency replays the stored response for a repeated Idempotency-Key,
// so callers can safely retry a transfer without re-checking transaction
// state themselves.
func Idempotency(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("Idempotency-Key")
		if key == "" {
			return c.Next()
		}

		status, body, err := store.IdempotencyRecord(c.Context(), key)
		if err == nil {
			slog.Info("idempotency hit, returning cached response", "key", key)
			c.Set("X-Idempotency-Hit", "true")
			c.Set("Content-Type", "application/json")
			return c.Status(status).Send(body)
		}
		if !errors.Is(err, storage.ErrNoRecord) {
			slog.Error("failed to read idempotency record", "error", err, "key", key)
		}

		if err := c.Next(); err != nil {
			return err
		}

		resStatus := c.Response().StatusCode()
		resBody := append([]byte(nil), c.Response().Body()...)
		if err := store.SaveIdempotencyRecord(c.Context(), key, resStatus, resBody); err != nil {
			slog.Error("failed to save idempotency record", "error", err, "key", key)
		}
		return nil
	}
}
