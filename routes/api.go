package routes

import (
	"github.com/gofiber/fiber/v2"

	"hackerranker-backend/controllers"
	"hackerranker-backend/middleware"
)

func APIRoutes(app *fiber.App, h *controllers.Handler) {
	api := app.Group("/api")

	api.Post("/members", h.RegisterMember)
	api.Patch("/members/:id", h.UpdateMemberProfile)
	api.Get("/members/:id/profile", h.GetMemberProfile)
	api.Get("/leaderboard/:platform", h.GetLeaderboard)

	admin := api.Group("/admin", middleware.RequireAdmin)
	admin.Post("/sync", h.TriggerSync)
}
