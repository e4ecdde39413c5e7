package handlers

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const latestReviewsOnTutor = 5

// ListTutors searches tutors by subject, rating and hourly rate.
func (h *Handler) ListTutors(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	q := h.DB.WithContext(c.UserContext()).Model(&models.User{}).
		Joins("JOIN tutor_profiles ON tutor_profiles.user_id = users.id").
		Where("users.role = ?", models.RoleTutor)

	if subject := strings.TrimSpace(c.Query("subject")); subject != "" {
		q = q.Where("LOWER(tutor_profiles.subjects) LIKE ?", "%"+strings.ToLower(subject)+"%")
	}
	if v, ok, err := floatQuery(c, "minRating", "min_rating"); err != nil {
		return serviceError(c, err)
	} else if ok {
		q = q.Where("tutor_profiles.average_rating >= ?", v)
	}
	if v, ok, err := floatQuery(c, "minRate", "min_rate"); err != nil {
		return serviceError(c, err)
	} else if ok {
		q = q.Where("tutor_profiles.hourly_rate >= ?", v)
	}
	if v, ok, err := floatQuery(c, "maxRate", "max_rate"); err != nil {
		return serviceError(c, err)
	} else if ok {
		q = q.Where("tutor_profiles.hourly_rate <= ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return serviceError(c, err)
	}
	tutors := []models.User{}
	if err := q.Preload("TutorProfile").
		Order("tutor_profiles.review_count DESC").
		Order("users.created_at ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&tutors).Error; err != nil {
		return serviceError(c, err)
	}
	return paginated(c, tutors, page, total)
}

func floatQuery(c *fiber.Ctx, names ...string) (float64, bool, error) {
	for _, name := range names {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false, services.InvalidArgument(fmt.Sprintf("%s must be a number", name))
		}
		return v, true, nil
	}
	return 0, false, nil
}

// GetTutor returns a tutor's public profile with their latest reviews.
func (h *Handler) GetTutor(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return serviceError(c, err)
	}
	var tutor models.User
	err = h.DB.WithContext(c.UserContext()).
		Preload("TutorProfile").
		First(&tutor, "id = ? AND role = ?", id, models.RoleTutor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return serviceError(c, services.NotFound("Tutor not found"))
		}
		return serviceError(c, err)
	}

	reviews, _, err := h.Reviews.List(c.UserContext(), services.ReviewFilter{
		TutorID: tutor.ID,
		Page:    utils.NewPage(1, latestReviewsOnTutor),
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"tutor": tutor, "reviews": reviews})
}

// StudentMetrics summarizes one student's history with the calling tutor.
type StudentMetrics struct {
	Student           models.UserSummary `json:"student"`
	TotalSessions     int                `json:"total_sessions"`
	CompletedSessions int                `json:"completed_sessions"`
	UpcomingSessions  int                `json:"upcoming_sessions"`
	TotalSpent        float64            `json:"total_spent"`
	LastSessionAt     time.Time          `json:"last_session_at"`
}

// ListStudents returns every student who has booked the calling tutor.
func (h *Handler) ListStudents(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	var bookings []models.Booking
	if err := h.DB.WithContext(c.UserContext()).
		Preload("Student").
		Where("tutor_id = ?", who.ID).
		Find(&bookings).Error; err != nil {
		return serviceError(c, err)
	}

	byStudent := map[uuid.UUID]*StudentMetrics{}
	for _, b := range bookings {
		m, ok := byStudent[b.StudentID]
		if !ok {
			m = &StudentMetrics{Student: models.UserSummary{ID: b.StudentID}}
			if b.Student != nil {
				m.Student = b.Student.Summary()
			}
			byStudent[b.StudentID] = m
		}
		m.TotalSessions++
		switch b.Status {
		case models.BookingCompleted:
			m.CompletedSessions++
			m.TotalSpent += b.Price
		case models.BookingPending, models.BookingConfirmed:
			m.UpcomingSessions++
		}
		if b.StartTime.After(m.LastSessionAt) {
			m.LastSessionAt = b.StartTime
		}
	}

	out := make([]StudentMetrics, 0, len(byStudent))
	for _, m := range byStudent {
		m.TotalSpent = math.Round(m.TotalSpent*100) / 100
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSessionAt.After(out[j].LastSessionAt) })
	return c.JSON(out)
}

func (h *Handler) GetEarnings(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	summary, err := h.Earnings.List(c.UserContext(), who, pageFromQuery(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(summary)
}

// GetEarningsStatement renders the monthly statement as a PDF, or as HTML
// with format=html.
func (h *Handler) GetEarningsStatement(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	month := time.Now().UTC()
	if raw := c.Query("month"); raw != "" {
		month, err = time.Parse("2006-01", raw)
		if err != nil {
			return serviceError(c, services.InvalidArgument("month must be formatted as YYYY-MM"))
		}
	}

	if c.Query("format") == "html" {
		doc, err := h.Earnings.StatementHTML(c.UserContext(), who, month)
		if err != nil {
			return serviceError(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(doc)
	}

	pdf, err := h.Earnings.StatementPDF(c.UserContext(), who, month)
	if err != nil {
		return serviceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="earnings-%s.pdf"`, month.Format("2006-01")))
	return c.Send(pdf)
}
