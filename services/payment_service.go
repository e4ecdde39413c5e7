package services

import (
	"context"
	"errors"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentService manages the internal payment records that shadow bookings.
// No gateway is involved; records move with the booking lifecycle.
type PaymentService struct {
	DB        *gorm.DB
	Publisher Publisher
}

func NewPaymentService(db *gorm.DB, pub Publisher) *PaymentService {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &PaymentService{DB: db, Publisher: pub}
}

// PaymentStatusFor is the payment status that matches a booking status.
func PaymentStatusFor(status models.BookingStatus) (models.PaymentStatus, bool) {
	switch status {
	case models.BookingPending, models.BookingConfirmed:
		return models.PaymentPending, true
	case models.BookingCompleted:
		return models.PaymentCompleted, true
	}
	return "", false
}

// Create records a payment for a booking that lacks one. Only the booking's
// student or an admin may do so. The status follows the booking.
func (s *PaymentService) Create(ctx context.Context, who Identity, bookingID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("booking not found")
			}
			return err
		}
		if !who.IsAdmin() && booking.StudentID != who.ID {
			return Forbidden("unauthorized to pay for this booking")
		}
		status, ok := PaymentStatusFor(booking.Status)
		if !ok {
			return InvalidArgument("cannot pay for a cancelled booking")
		}

		var existing int64
		if err := tx.Model(&models.Payment{}).Where("booking_id = ?", booking.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return Conflict("payment already exists for this booking")
		}

		payment = models.Payment{
			BookingID: booking.ID,
			StudentID: booking.StudentID,
			TutorID:   booking.TutorID,
			Amount:    booking.Price,
			Status:    status,
		}
		if err := tx.Create(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflict("payment already exists for this booking")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishTo(s.Publisher, EventPaymentCreated, &payment, payment.StudentID, payment.TutorID)
	return &payment, nil
}

// List returns payments visible to the caller: students see what they paid,
// tutors what they were paid, admins everything.
func (s *PaymentService) List(ctx context.Context, who Identity, status string, page utils.Page) ([]models.Payment, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Payment{})
	switch who.Role {
	case models.RoleStudent:
		q = q.Where("student_id = ?", who.ID)
	case models.RoleTutor:
		q = q.Where("tutor_id = ?", who.ID)
	case models.RoleAdmin:
	default:
		return nil, 0, ErrAuthenticationRequired
	}
	if status != "" {
		switch st := models.PaymentStatus(status); st {
		case models.PaymentPending, models.PaymentCompleted, models.PaymentRefunded, models.PaymentFailed:
			q = q.Where("status = ?", st)
		default:
			return nil, 0, InvalidArgument("unknown payment status")
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page.Limit == 0 {
		page = utils.NewPage(page.Page, page.Limit)
	}
	payments := []models.Payment{}
	err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&payments).Error
	return payments, total, err
}
