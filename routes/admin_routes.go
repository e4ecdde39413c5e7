package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(h.Settings.JWTSecret), middleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", h.ListUsers)
	admin.Get("/stats", h.GetDashboardStats)
	admin.Delete("/reviews/:id", h.DeleteReview)
}
