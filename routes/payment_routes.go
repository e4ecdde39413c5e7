package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	payments := api.Group("/payments", middleware.Protected(h.Settings.JWTSecret))
	payments.Get("", h.ListPayments)
	payments.Post("", h.CreatePayment)
}
