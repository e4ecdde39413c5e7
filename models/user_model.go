package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTutor   Role = "TUTOR"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTutor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     Role      `gorm:"size:20;not null;index" json:"role"`
	Image    *string   `gorm:"size:255" json:"image,omitempty"`

	TutorProfile   *TutorProfile   `gorm:"foreignkey:UserID" json:"tutor_profile,omitempty"`
	StudentProfile *StudentProfile `gorm:"foreignkey:UserID" json:"student_profile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RoleProfile returns the profile matching the user's role: *TutorProfile for
// tutors, *StudentProfile for students and nil for admins or when the profile
// was not loaded.
func (u User) RoleProfile() any {
	switch u.Role {
	case RoleTutor:
		if u.TutorProfile != nil {
			return u.TutorProfile
		}
	case RoleStudent:
		if u.StudentProfile != nil {
			return u.StudentProfile
		}
	}
	return nil
}

// UserSummary is the public projection of a user embedded in other payloads.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image *string   `json:"image,omitempty"`
	Role  Role      `json:"role,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Image: u.Image, Role: u.Role}
}
