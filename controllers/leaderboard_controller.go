package controllers

import (
	"time"

	"hackerranker-backend/leaderboard"

	"github.com/gofiber/fiber/v2"
)

// GetLeaderboard returns the organization leaderboard for one platform.
// GET /api/leaderboard/:platform?date=YYYY-MM-DD (date defaults to today)
func (h *Handler) GetLeaderboard(c *fiber.Ctx) error {
	platform, err := leaderboard.ParsePlatform(c.Params("platform"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "platform must be one of htb, rm, thm"})
	}

	date := today()
	if raw := c.Query("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
		}
	}

	rows, err := h.Ranking.Leaderboard(c.Context(), platform, date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load leaderboard"})
	}

	return c.JSON(fiber.Map{
		"platform": platform,
		"date":     date.Format("2006-01-02"),
		"rows":     rows,
	})
}
