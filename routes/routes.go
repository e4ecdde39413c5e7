package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

// Setup mounts every API group on app.
func Setup(app *fiber.App, h *handlers.Handler) {
	PublicRoutes(app, h)
	AuthRoutes(app, h)
	ProfileRoutes(app, h)
	BookingRoutes(app, h)
	PaymentRoutes(app, h)
	TutorRoutes(app, h)
	UploadRoutes(app, h)
	MessagingRoutes(app, h)
	AdminRoutes(app, h)
}
