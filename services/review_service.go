package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anjiri1684/tutor_marketplace/metrics"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewService struct {
	DB        *gorm.DB
	Publisher Publisher
}

func NewReviewService(db *gorm.DB, pub Publisher) *ReviewService {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &ReviewService{DB: db, Publisher: pub}
}

type ReviewFilter struct {
	TutorID   uuid.UUID
	StudentID uuid.UUID
	MinRating int
	Page      utils.Page
}

// Create records a student's review of a completed booking and refreshes the
// tutor's average rating in the same transaction.
func (s *ReviewService) Create(ctx context.Context, who Identity, bookingID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if who.Role != models.RoleStudent {
		return nil, Forbidden("only students can leave reviews")
	}
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, InvalidArgument(fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating))
	}

	var review models.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("booking not found")
			}
			return err
		}
		if booking.StudentID != who.ID {
			return Forbidden("you can only review your own bookings")
		}
		if booking.Status != models.BookingCompleted {
			return InvalidArgument("reviews can only be submitted for completed bookings")
		}

		// Holding the profile row serializes reviews of the same tutor so the
		// recomputed mean always sees every committed rating.
		if err := lockTutorProfile(tx, booking.TutorID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Review{}).Where("booking_id = ?", booking.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return Conflict("a review for this booking has already been submitted")
		}

		review = models.Review{
			BookingID: booking.ID,
			StudentID: who.ID,
			TutorID:   booking.TutorID,
			Rating:    rating,
			Comment:   strings.TrimSpace(comment),
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflict("a review for this booking has already been submitted")
			}
			return err
		}
		return recomputeTutorRating(tx, booking.TutorID)
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewsCreated.Inc()
	log.Info().Str("review_id", review.ID.String()).Str("tutor_id", review.TutorID.String()).Int("rating", rating).Msg("review created")
	publishTo(s.Publisher, EventReviewCreated, &review, review.TutorID)
	return &review, nil
}

func (s *ReviewService) List(ctx context.Context, f ReviewFilter) ([]models.Review, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Review{})
	if f.TutorID != uuid.Nil {
		q = q.Where("tutor_id = ?", f.TutorID)
	}
	if f.StudentID != uuid.Nil {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.MinRating > 0 {
		q = q.Where("rating >= ?", f.MinRating)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := f.Page
	if page.Limit == 0 {
		page = utils.NewPage(page.Page, page.Limit)
	}
	reviews := []models.Review{}
	err := q.Preload("Student", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "image", "role")
	}).Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&reviews).Error
	return reviews, total, err
}

// Delete removes a review and refreshes the tutor's rating. Admin only.
func (s *ReviewService) Delete(ctx context.Context, who Identity, id uuid.UUID) error {
	if !who.IsAdmin() {
		return Forbidden("only admins can delete reviews")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("review not found")
			}
			return err
		}
		if err := lockTutorProfile(tx, review.TutorID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recomputeTutorRating(tx, review.TutorID)
	})
}

func lockTutorProfile(tx *gorm.DB, tutorID uuid.UUID) error {
	var profile models.TutorProfile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", tutorID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("tutor profile not found")
	}
	return err
}

// recomputeTutorRating rewrites average_rating and review_count from the full
// set of the tutor's reviews. No reviews leaves the average NULL.
func recomputeTutorRating(tx *gorm.DB, tutorID uuid.UUID) error {
	var result struct {
		Avg   *float64
		Count int64
	}
	if err := tx.Model(&models.Review{}).
		Where("tutor_id = ?", tutorID).
		Select("avg(rating) as avg, count(*) as count").
		Scan(&result).Error; err != nil {
		return err
	}
	return tx.Model(&models.TutorProfile{}).
		Where("user_id = ?", tutorID).
		Updates(map[string]any{"average_rating": result.Avg, "review_count": result.Count}).Error
}
