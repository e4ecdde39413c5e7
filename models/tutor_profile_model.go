package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TutorProfile struct {
	UserID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"user_id"`
	Subjects      string         `gorm:"type:text" json:"subjects"`
	HourlyRate    float64        `gorm:"type:numeric(10,2);not null;default:0" json:"hourly_rate"`
	Bio           *string        `gorm:"type:text" json:"bio"`
	Education     *string        `gorm:"type:text" json:"education"`
	Experience    *string        `gorm:"type:text" json:"experience"`
	Availability  datatypes.JSON `json:"availability,omitempty"`
	AverageRating *float64       `gorm:"index" json:"average_rating"`
	ReviewCount   int            `gorm:"not null;default:0" json:"review_count"`
	CreatedAt     time.Time      `json:"-"`
	UpdatedAt     time.Time      `json:"-"`
}

// SubjectList splits the comma separated subject column.
func (p TutorProfile) SubjectList() []string {
	out := []string{}
	for _, s := range strings.Split(p.Subjects, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func JoinSubjects(subjects []string) string {
	clean := make([]string, 0, len(subjects))
	seen := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		clean = append(clean, s)
	}
	return strings.Join(clean, ",")
}
