package models

import (
	"time"

	"github.com/google/uuid"
)

type StudentProfile struct {
	UserID     uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	Bio        *string   `gorm:"type:text" json:"bio"`
	Interests  *string   `gorm:"type:text" json:"interests"`
	GradeLevel *string   `gorm:"size:50" json:"grade_level"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}
