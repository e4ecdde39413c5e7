package services

import (
	"fmt"

	"github.com/anjiri1684/tutor_marketplace/models"
)

// Transition is one allowed edge of the booking lifecycle.
type Transition struct {
	From models.BookingStatus
	To   models.BookingStatus
}

var bookingTransitions = []Transition{
	{From: models.BookingPending, To: models.BookingConfirmed},
	{From: models.BookingPending, To: models.BookingCancelled},
	{From: models.BookingConfirmed, To: models.BookingCompleted},
	{From: models.BookingConfirmed, To: models.BookingCancelled},
}

func CanTransition(from, to models.BookingStatus) bool {
	for _, tr := range bookingTransitions {
		if tr.From == from && tr.To == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to models.BookingStatus) error {
	if !to.Valid() {
		return InvalidArgument(fmt.Sprintf("unknown booking status %q", to))
	}
	if !CanTransition(from, to) {
		return &Error{Kind: KindInvalidTransition, Msg: fmt.Sprintf("cannot move booking from %s to %s", from, to)}
	}
	return nil
}

// authorizeTransition decides who may request a move to status. Confirming
// and completing belong to the assigned tutor; cancelling is open to either
// party. Admins may do all three.
func authorizeTransition(who Identity, booking models.Booking, to models.BookingStatus) error {
	if who.IsAdmin() {
		return nil
	}
	switch to {
	case models.BookingConfirmed, models.BookingCompleted:
		if who.Role != models.RoleTutor || booking.TutorID != who.ID {
			return Forbidden(fmt.Sprintf("only the assigned tutor can mark a booking %s", to))
		}
	case models.BookingCancelled:
		if !booking.IsParty(who.ID) {
			return Forbidden("unauthorized to cancel this booking")
		}
	default:
		if !booking.IsParty(who.ID) {
			return Forbidden("unauthorized to update this booking")
		}
	}
	return nil
}

func canManageMeetingLink(who Identity, booking models.Booking) bool {
	return who.IsAdmin() || (who.Role == models.RoleTutor && booking.TutorID == who.ID)
}
