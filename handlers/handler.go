package handlers

import (
	config "github.com/anjiri1684/tutor_marketplace/configs"
	"github.com/anjiri1684/tutor_marketplace/notifications"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/anjiri1684/tutor_marketplace/websocket"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

// Handler carries the collaborators every HTTP endpoint needs.
type Handler struct {
	DB       *gorm.DB
	Settings config.Settings
	Hub      *websocket.Hub
	Mailer   notifications.Mailer

	Bookings *services.BookingService
	Reviews  *services.ReviewService
	Messages *services.MessageService
	Payments *services.PaymentService
	Earnings *services.EarningsService
}

// New wires the services with hub as their notification publisher. A nil hub
// disables realtime delivery.
func New(db *gorm.DB, settings config.Settings, hub *websocket.Hub, mailer notifications.Mailer) *Handler {
	var pub services.Publisher = services.NopPublisher{}
	if hub != nil {
		pub = hub
	}
	if mailer == nil {
		mailer = notifications.NopMailer{}
	}
	return &Handler{
		DB:       db,
		Settings: settings,
		Hub:      hub,
		Mailer:   mailer,
		Bookings: services.NewBookingService(db, pub),
		Reviews:  services.NewReviewService(db, pub),
		Messages: services.NewMessageService(db, pub),
		Payments: services.NewPaymentService(db, pub),
		Earnings: services.NewEarningsService(db),
	}
}
