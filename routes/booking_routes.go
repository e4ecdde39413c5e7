package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")
	protected := middleware.Protected(h.Settings.JWTSecret)

	bookings := api.Group("/bookings", protected)
	bookings.Get("", h.ListBookings)
	bookings.Post("", middleware.RequireRole(models.RoleStudent, models.RoleAdmin), h.CreateBooking)
	bookings.Get("/tutor", middleware.RequireRole(models.RoleTutor), h.ListTutorBookings)
	bookings.Get("/:id", h.GetBooking)
	bookings.Patch("/:id", h.UpdateBooking)
	bookings.Delete("/:id", middleware.RequireRole(models.RoleAdmin), h.DeleteBooking)

	sessions := api.Group("/sessions", protected)
	sessions.Get("", h.ListSessions)
	sessions.Post("", h.CreateSession)
	sessions.Get("/student", middleware.RequireRole(models.RoleStudent), h.ListStudentSessions)

	api.Post("/reviews", protected, middleware.RequireRole(models.RoleStudent), h.CreateReview)
}
