package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_marketplace/database"
	"github.com/anjiri1684/tutor_marketplace/models"
	"gorm.io/gorm"
)

var baseTime = time.Date(2030, time.January, 7, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name), false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type published struct {
	Channel string
	Event   string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(channel, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Channel: channel, Event: event, Payload: payload})
}

func (p *recordingPublisher) channelsFor(event string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e.Channel)
		}
	}
	return out
}

func createUser(t *testing.T, db *gorm.DB, role models.Role, name string) models.User {
	t.Helper()
	u := models.User{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password: "x",
		Role:     role,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	switch role {
	case models.RoleStudent:
		if err := db.Create(&models.StudentProfile{UserID: u.ID}).Error; err != nil {
			t.Fatalf("create student profile: %v", err)
		}
	}
	return u
}

func createTutor(t *testing.T, db *gorm.DB, name string, rate float64) models.User {
	t.Helper()
	u := createUser(t, db, models.RoleTutor, name)
	profile := models.TutorProfile{UserID: u.ID, Subjects: "Math,Physics", HourlyRate: rate}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create tutor profile: %v", err)
	}
	return u
}

func asUser(u models.User) Identity { return Identity{ID: u.ID, Role: u.Role} }

func statusPtr(s models.BookingStatus) *models.BookingStatus { return &s }

// bookAt creates a booking for student with tutor starting offset after baseTime.
func bookAt(t *testing.T, svc *BookingService, student, tutor models.User, offset, length time.Duration) *models.Booking {
	t.Helper()
	b, err := svc.Create(t.Context(), asUser(student), CreateBookingInput{
		TutorID:   tutor.ID,
		Subject:   "Math",
		StartTime: baseTime.Add(offset),
		EndTime:   baseTime.Add(offset + length),
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}
