package handlers

import (
	"strings"

	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateReviewRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// CreateReview lets a student rate a completed booking once.
func (h *Handler) CreateReview(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	var req CreateReviewRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err)
	}
	review, err := h.Reviews.Create(c.UserContext(), who, uuid.MustParse(req.BookingID), req.Rating, strings.TrimSpace(req.Comment))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *Handler) ListReviews(c *fiber.Ctx) error {
	f := services.ReviewFilter{
		MinRating: utils.AtoiDefault(c.Query("min_rating"), 0),
		Page:      pageFromQuery(c),
	}
	var err error
	if f.TutorID, err = optionalUUID(c.Query("tutor_id"), "tutor_id"); err != nil {
		return serviceError(c, err)
	}
	if f.StudentID, err = optionalUUID(c.Query("student_id"), "student_id"); err != nil {
		return serviceError(c, err)
	}
	reviews, total, err := h.Reviews.List(c.UserContext(), f)
	if err != nil {
		return serviceError(c, err)
	}
	return paginated(c, reviews, f.Page, total)
}
