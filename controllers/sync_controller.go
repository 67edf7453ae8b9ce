package controllers

import (
	"github.com/gofiber/fiber/v2"
)

type SyncRequest struct {
	MemberIDs []int64 `json:"memberIds"`
	DevMode   bool    `json:"devMode"`
}

// TriggerSync runs one full synchronization pass on demand. The chat
// collaborator supplies the live member-id list; devMode skips roster
// reconciliation.
// POST /api/admin/sync
func (h *Handler) TriggerSync(c *fiber.Ctx) error {
	var req SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if !req.DevMode && len(req.MemberIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "memberIds is required outside dev mode"})
	}

	summary, err := h.Updater.SyncAll(c.Context(), req.MemberIDs, req.DevMode)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   err.Error(),
			"summary": summary,
		})
	}

	return c.JSON(fiber.Map{
		"summary":         summary,
		"durationSeconds": summary.Duration.Seconds(),
	})
}
