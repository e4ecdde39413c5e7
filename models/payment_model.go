package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type Payment struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	BookingID uuid.UUID     `gorm:"type:uuid;not null;unique" json:"booking_id"`
	StudentID uuid.UUID     `gorm:"type:uuid;not null;index" json:"student_id"`
	TutorID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"tutor_id"`
	Amount    float64       `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status    PaymentStatus `gorm:"size:20;not null;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
