package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

func TutorRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")
	tutorOnly := []fiber.Handler{
		middleware.Protected(h.Settings.JWTSecret),
		middleware.RequireRole(models.RoleTutor),
	}

	api.Get("/students", append(tutorOnly, h.ListStudents)...)

	earnings := api.Group("/earnings", tutorOnly...)
	earnings.Get("", h.GetEarnings)
	earnings.Get("/statement", h.GetEarningsStatement)
}
