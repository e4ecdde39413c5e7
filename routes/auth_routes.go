package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	limiter := middleware.NewRateLimiter(h.Settings.RateRPS, h.Settings.RateBurst, middleware.KeyByUserOrIP())
	auth := api.Group("/auth", limiter.Handler())
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", middleware.Protected(h.Settings.JWTSecret), h.Me)
}
