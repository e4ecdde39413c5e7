package services

import (
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
)

// Event names pushed to user channels.
const (
	EventBookingCreated  = "booking-created"
	EventBookingUpdated  = "booking-updated"
	EventReviewCreated   = "review-created"
	EventReceiveMessage  = "receive-message"
	EventPaymentCreated  = "payment-created"
	EventSessionReminder = "session-reminder"
)

// Publisher delivers realtime events. Delivery is best effort and must not
// block the caller; a failed push never fails the originating operation.
type Publisher interface {
	Publish(channel, event string, payload any)
}

type NopPublisher struct{}

func (NopPublisher) Publish(string, string, any) {}

// Identity is the authenticated caller of a service operation.
type Identity struct {
	ID   uuid.UUID
	Role models.Role
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

func publishTo(p Publisher, event string, payload any, users ...uuid.UUID) {
	if p == nil {
		return
	}
	for _, u := range users {
		p.Publish(u.String(), event, payload)
	}
}
