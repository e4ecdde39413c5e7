package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Earning is an append-only ledger entry crediting a tutor.
type Earning struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TutorID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"tutor_id"`
	BookingID   *uuid.UUID `gorm:"type:uuid;index" json:"booking_id"`
	Amount      float64    `gorm:"type:numeric(10,2);not null" json:"amount"`
	Description string     `gorm:"type:text" json:"description"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (e *Earning) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
