package handler

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/adapter/storage"
	"github.com/caotrungduc03/banking-app/internal/core/stats"
)

const historyLimit = 20

type HistoryHandler struct {
	Store      storage.Store
	Aggregator *stats.Aggregator
}

// GetHistory returns the account's most recent transactions, both
// directions, newest first. Failed and pending transactions are included:
// history is where non-silent failures show up.
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	accountUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account ID"})
	}

	history, err := h.Store.HistoryByAccount(c.Context(), accountUUID, historyLimit)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch history"})
	}

	return c.JSON(fiber.Map{"transactions": history})
}

// GetStatistics aggregates income/expense/category totals for the account
// over [start, end]. Both bounds are RFC3339; they default to the last 30
// days.
func (h *HistoryHandler) GetStatistics(c *fiber.Ctx) error {
	accountUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account ID"})
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	if raw := c.Query("start"); raw != "" {
		start, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start date, want RFC3339"})
		}
	}
	if raw := c.Query("end"); raw != "" {
		end, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end date, want RFC3339"})
		}
	}
	if end.Before(start) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "End date is before start date"})
	}

	summary, err := h.Aggregator.Aggregate(c.Context(), accountUUID, start, end)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not compute statistics"})
	}

	return c.JSON(summary)
}
