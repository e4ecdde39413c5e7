package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_marketplace/metrics"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgExclusionViolation is raised by the bookings_no_overlap constraint.
const pgExclusionViolation = "23P01"

type BookingService struct {
	DB        *gorm.DB
	Publisher Publisher
	Now       func() time.Time
}

func NewBookingService(db *gorm.DB, pub Publisher) *BookingService {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &BookingService{DB: db, Publisher: pub, Now: time.Now}
}

type CreateBookingInput struct {
	StudentID   uuid.UUID
	TutorID     uuid.UUID
	Subject     string
	StartTime   time.Time
	EndTime     time.Time
	Notes       *string
	MeetingLink *string
}

type UpdateBookingInput struct {
	Status      *models.BookingStatus
	MeetingLink *string
}

type BookingFilter struct {
	Status    string
	TutorID   uuid.UUID
	StudentID uuid.UUID
	Page      utils.Page
}

// ParseStatusFilter accepts booking statuses case-insensitively. SCHEDULED is
// the session-side name for CONFIRMED.
func ParseStatusFilter(raw string) (models.BookingStatus, error) {
	s := models.BookingStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if s == "SCHEDULED" {
		return models.BookingConfirmed, nil
	}
	if !s.Valid() {
		return "", InvalidArgument(fmt.Sprintf("unknown booking status %q", raw))
	}
	return s, nil
}

// PriceFor returns hourlyRate × duration in hours, rounded to cents.
func PriceFor(hourlyRate float64, start, end time.Time) float64 {
	hours := end.Sub(start).Hours()
	return math.Round(hourlyRate*hours*100) / 100
}

func (s *BookingService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// resolveParties applies the per-role booking rules and returns the student
// and tutor the booking will be created for.
func resolveParties(who Identity, in CreateBookingInput) (uuid.UUID, uuid.UUID, error) {
	studentID, tutorID := in.StudentID, in.TutorID
	switch who.Role {
	case models.RoleStudent:
		if studentID != uuid.Nil && studentID != who.ID {
			return uuid.Nil, uuid.Nil, Forbidden("students can only book sessions for themselves")
		}
		studentID = who.ID
	case models.RoleTutor:
		if tutorID != uuid.Nil && tutorID != who.ID {
			return uuid.Nil, uuid.Nil, Forbidden("tutors can only schedule their own sessions")
		}
		tutorID = who.ID
	case models.RoleAdmin:
	default:
		return uuid.Nil, uuid.Nil, ErrAuthenticationRequired
	}
	if studentID == uuid.Nil {
		return uuid.Nil, uuid.Nil, InvalidArgument("studentId is required")
	}
	if tutorID == uuid.Nil {
		return uuid.Nil, uuid.Nil, InvalidArgument("tutorId is required")
	}
	return studentID, tutorID, nil
}

func (s *BookingService) Create(ctx context.Context, who Identity, in CreateBookingInput) (*models.Booking, error) {
	studentID, tutorID, err := resolveParties(who, in)
	if err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return nil, InvalidArgument("subject is required")
	}
	start, end := in.StartTime.UTC(), in.EndTime.UTC()
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return nil, InvalidArgument("start time must be before end time")
	}

	var booking models.Booking
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tutor models.User
		if err := tx.Where("id = ? AND role = ?", tutorID, models.RoleTutor).First(&tutor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("tutor not found")
			}
			return err
		}

		// Serializes booking creation per tutor.
		var profile models.TutorProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", tutorID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("tutor profile not found")
			}
			return err
		}

		var student models.User
		if err := tx.Where("id = ? AND role = ?", studentID, models.RoleStudent).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("student not found")
			}
			return err
		}

		var overlapping int64
		if err := tx.Model(&models.Booking{}).
			Where("tutor_id = ? AND status IN ?", tutorID, models.ActiveBookingStatuses).
			Where("start_time < ? AND end_time > ?", end, start).
			Count(&overlapping).Error; err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrSchedulingConflict
		}

		booking = models.Booking{
			StudentID:   studentID,
			TutorID:     tutorID,
			Subject:     subject,
			StartTime:   start,
			EndTime:     end,
			Status:      models.BookingPending,
			Price:       PriceFor(profile.HourlyRate, start, end),
			Notes:       in.Notes,
			MeetingLink: in.MeetingLink,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		payment := models.Payment{
			BookingID: booking.ID,
			StudentID: studentID,
			TutorID:   tutorID,
			Amount:    booking.Price,
			Status:    models.PaymentPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		booking.Student = &student
		booking.Tutor = &tutor
		booking.Payment = &payment
		return nil
	})
	if err != nil {
		if isExclusionViolation(err) {
			err = ErrSchedulingConflict
		}
		if errors.Is(err, ErrSchedulingConflict) {
			metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	metrics.BookingsCreated.WithLabelValues(string(who.Role)).Inc()
	log.Info().
		Str("booking_id", booking.ID.String()).
		Str("tutor_id", tutorID.String()).
		Str("student_id", studentID.String()).
		Msg("booking created")
	publishTo(s.Publisher, EventBookingCreated, &booking, booking.TutorID, booking.StudentID)
	return &booking, nil
}

func (s *BookingService) Get(ctx context.Context, who Identity, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.WithContext(ctx).
		Preload("Student").
		Preload("Tutor").
		Preload("Payment").
		Preload("Review").
		First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("booking not found")
		}
		return nil, err
	}
	if !who.IsAdmin() && !booking.IsParty(who.ID) {
		return nil, Forbidden("unauthorized to view this booking")
	}
	return &booking, nil
}

// List returns the caller's bookings, newest start first. Students see their
// own, tutors see theirs, admins see everything and may narrow by party.
func (s *BookingService) List(ctx context.Context, who Identity, f BookingFilter) ([]models.Booking, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Booking{})
	switch who.Role {
	case models.RoleStudent:
		q = q.Where("student_id = ?", who.ID)
	case models.RoleTutor:
		q = q.Where("tutor_id = ?", who.ID)
	case models.RoleAdmin:
		if f.TutorID != uuid.Nil {
			q = q.Where("tutor_id = ?", f.TutorID)
		}
		if f.StudentID != uuid.Nil {
			q = q.Where("student_id = ?", f.StudentID)
		}
	default:
		return nil, 0, ErrAuthenticationRequired
	}
	if f.Status != "" {
		status, err := ParseStatusFilter(f.Status)
		if err != nil {
			return nil, 0, err
		}
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page.Limit == 0 {
		page = utils.NewPage(page.Page, page.Limit)
	}
	bookings := []models.Booking{}
	err := q.Preload("Student").Preload("Tutor").Preload("Payment").
		Order("start_time DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// Update applies a status transition and/or a meeting link change. Caller
// authorization is checked before transition legality.
func (s *BookingService) Update(ctx context.Context, who Identity, id uuid.UUID, in UpdateBookingInput) (*models.Booking, error) {
	if in.Status == nil && in.MeetingLink == nil {
		return nil, InvalidArgument("nothing to update")
	}

	var booking models.Booking
	var from models.BookingStatus
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("booking not found")
			}
			return err
		}
		from = booking.Status

		if !who.IsAdmin() && !booking.IsParty(who.ID) {
			return Forbidden("unauthorized to update this booking")
		}
		if in.Status != nil {
			if err := authorizeTransition(who, booking, *in.Status); err != nil {
				return err
			}
		}
		if in.MeetingLink != nil && !canManageMeetingLink(who, booking) {
			return Forbidden("only the assigned tutor can set the meeting link")
		}

		if in.Status != nil {
			if err := s.applyTransition(tx, &booking, *in.Status); err != nil {
				return err
			}
		}
		if in.MeetingLink != nil {
			link := strings.TrimSpace(*in.MeetingLink)
			booking.MeetingLink = &link
			if err := tx.Model(&booking).Update("meeting_link", link).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Student").Preload("Tutor").Preload("Payment").First(&booking, "id = ?", booking.ID).Error
	})
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		log.Info().
			Str("booking_id", booking.ID.String()).
			Str("from", string(from)).
			Str("to", string(booking.Status)).
			Str("by", who.ID.String()).
			Msg("booking status changed")
	}
	publishTo(s.Publisher, EventBookingUpdated, &booking, booking.TutorID, booking.StudentID)
	return &booking, nil
}

// applyTransition moves booking to status inside tx together with its
// payment and ledger side effects.
func (s *BookingService) applyTransition(tx *gorm.DB, booking *models.Booking, to models.BookingStatus) error {
	from := booking.Status
	if err := checkTransition(from, to); err != nil {
		return err
	}

	now := s.now()
	updates := map[string]any{"status": to}
	switch to {
	case models.BookingCompleted:
		updates["completed_at"] = now
		booking.CompletedAt = &now
	case models.BookingCancelled:
		updates["cancelled_at"] = now
		booking.CancelledAt = &now
	}
	if err := tx.Model(booking).Updates(updates).Error; err != nil {
		return err
	}
	booking.Status = to

	switch to {
	case models.BookingCompleted:
		var student models.User
		if err := tx.Select("id", "name").First(&student, "id = ?", booking.StudentID).Error; err != nil {
			return err
		}
		bookingID := booking.ID
		earning := models.Earning{
			TutorID:     booking.TutorID,
			BookingID:   &bookingID,
			Amount:      booking.Price,
			Description: EarningDescription(student.Name, booking.StartTime),
		}
		if err := tx.Create(&earning).Error; err != nil {
			return err
		}
		if err := setPaymentStatus(tx, booking.ID, models.PaymentCompleted); err != nil {
			return err
		}
	case models.BookingCancelled:
		if err := setPaymentStatus(tx, booking.ID, models.PaymentRefunded); err != nil {
			return err
		}
	}

	metrics.BookingTransitions.WithLabelValues(string(from), string(to)).Inc()
	return nil
}

func EarningDescription(studentName string, start time.Time) string {
	return fmt.Sprintf("Earning from session with %s on %s", studentName, start.Format("Jan 2, 2006"))
}

func setPaymentStatus(tx *gorm.DB, bookingID uuid.UUID, status models.PaymentStatus) error {
	return tx.Model(&models.Payment{}).Where("booking_id = ?", bookingID).Update("status", status).Error
}

// Delete removes a booking with its payment and review. Earnings stay in the
// ledger with the booking reference cleared.
func (s *BookingService) Delete(ctx context.Context, who Identity, id uuid.UUID) error {
	if !who.IsAdmin() {
		return Forbidden("only admins can delete bookings")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("booking not found")
			}
			return err
		}
		if err := lockTutorProfile(tx, booking.TutorID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := tx.Where("booking_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Earning{}).Where("booking_id = ?", id).Update("booking_id", nil).Error; err != nil {
			return err
		}
		if err := recomputeTutorRating(tx, booking.TutorID); err != nil {
			return err
		}
		return tx.Delete(&booking).Error
	})
}

// ExpireStale cancels PENDING bookings that were never confirmed: those whose
// start time has passed and, when ttl > 0, those created more than ttl ago.
// It returns how many bookings were cancelled.
func (s *BookingService) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	now := s.now()
	q := s.DB.WithContext(ctx).Model(&models.Booking{}).Where("status = ?", models.BookingPending)
	if ttl > 0 {
		q = q.Where("start_time <= ? OR created_at < ?", now, now.Add(-ttl))
	} else {
		q = q.Where("start_time <= ?", now)
	}
	var ids []uuid.UUID
	if err := q.Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		var booking models.Booking
		cancelled := false
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", id).Error; err != nil {
				return err
			}
			// confirmed or cancelled since the scan
			if booking.Status != models.BookingPending {
				return nil
			}
			cancelled = true
			return s.applyTransition(tx, &booking, models.BookingCancelled)
		})
		if err != nil {
			log.Error().Err(err).Str("booking_id", id.String()).Msg("failed to expire pending booking")
			continue
		}
		if cancelled {
			expired++
			publishTo(s.Publisher, EventBookingUpdated, &booking, booking.TutorID, booking.StudentID)
		}
	}
	return expired, nil
}

// DueReminders lists CONFIRMED bookings starting within lead of now that
// have not been reminded yet.
func (s *BookingService) DueReminders(ctx context.Context, lead time.Duration) ([]models.Booking, error) {
	now := s.now()
	bookings := []models.Booking{}
	err := s.DB.WithContext(ctx).
		Preload("Student").Preload("Tutor").
		Where("status = ? AND reminded_at IS NULL AND start_time >= ? AND start_time < ?", models.BookingConfirmed, now, now.Add(lead)).
		Order("start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

// ClaimReminder stamps reminded_at on a booking that has none. It reports
// false when another run already claimed it.
func (s *BookingService) ClaimReminder(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND reminded_at IS NULL", id).
		Update("reminded_at", s.now())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}
