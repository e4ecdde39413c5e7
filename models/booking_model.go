package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// ActiveBookingStatuses are the statuses that occupy a tutor's calendar.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Booking is a scheduled session between one student and one tutor. The
// session shape (scheduled_for + duration) is derived from the start/end pair.
type Booking struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	StudentID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"student_id"`
	TutorID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_bookings_tutor_window,priority:1" json:"tutor_id"`
	Subject     string        `gorm:"size:255;not null" json:"subject"`
	StartTime   time.Time     `gorm:"not null;index:idx_bookings_tutor_window,priority:2" json:"start_time"`
	EndTime     time.Time     `gorm:"not null" json:"end_time"`
	Status      BookingStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Price       float64       `gorm:"type:numeric(10,2);not null" json:"price"`
	MeetingLink *string       `gorm:"size:255" json:"meeting_link"`
	Notes       *string       `gorm:"type:text" json:"notes"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	RemindedAt  *time.Time    `json:"-"`

	Student *User    `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Tutor   *User    `gorm:"foreignkey:TutorID" json:"tutor,omitempty"`
	Payment *Payment `gorm:"foreignkey:BookingID" json:"payment,omitempty"`
	Review  *Review  `gorm:"foreignkey:BookingID" json:"review,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b Booking) ScheduledFor() time.Time { return b.StartTime }

func (b Booking) Duration() time.Duration { return b.EndTime.Sub(b.StartTime) }

func (b Booking) DurationMinutes() int { return int(b.Duration() / time.Minute) }

// Overlaps reports whether the half-open windows [start, end) intersect.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

func (b Booking) IsParty(userID uuid.UUID) bool {
	return b.StudentID == userID || b.TutorID == userID
}
