package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreatePaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

func (h *Handler) ListPayments(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	page := pageFromQuery(c)
	payments, total, err := h.Payments.List(c.UserContext(), who, c.Query("status"), page)
	if err != nil {
		return serviceError(c, err)
	}
	return paginated(c, payments, page, total)
}

// CreatePayment records the payment for a booking that does not have one.
func (h *Handler) CreatePayment(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	var req CreatePaymentRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err)
	}
	payment, err := h.Payments.Create(c.UserContext(), who, uuid.MustParse(req.BookingID))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}
