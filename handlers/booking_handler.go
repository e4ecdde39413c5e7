package handlers

import (
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	TutorID     string    `json:"tutor_id" validate:"omitempty,uuid"`
	StudentID   string    `json:"student_id" validate:"omitempty,uuid"`
	Subject     string    `json:"subject" validate:"required,max=255"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Notes       *string   `json:"notes"`
	MeetingLink *string   `json:"meeting_link" validate:"omitempty,url"`
}

type UpdateBookingRequest struct {
	Status      *string `json:"status"`
	MeetingLink *string `json:"meeting_link" validate:"omitempty,url"`
}

func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	var req CreateBookingRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err)
	}
	in, err := bookingInput(req.TutorID, req.StudentID)
	if err != nil {
		return serviceError(c, err)
	}
	in.Subject = req.Subject
	in.StartTime = req.StartTime
	in.EndTime = req.EndTime
	in.Notes = req.Notes
	in.MeetingLink = req.MeetingLink

	booking, err := h.Bookings.Create(c.UserContext(), who, in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func bookingInput(tutorID, studentID string) (services.CreateBookingInput, error) {
	var in services.CreateBookingInput
	var err error
	if in.TutorID, err = optionalUUID(tutorID, "tutor_id"); err != nil {
		return in, err
	}
	if in.StudentID, err = optionalUUID(studentID, "student_id"); err != nil {
		return in, err
	}
	return in, nil
}

// ListBookings returns the caller's bookings. Admins may narrow by party.
func (h *Handler) ListBookings(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	filter, err := bookingFilter(c)
	if err != nil {
		return serviceError(c, err)
	}
	bookings, total, err := h.Bookings.List(c.UserContext(), who, filter)
	if err != nil {
		return serviceError(c, err)
	}
	return paginated(c, bookings, filter.Page, total)
}

// ListTutorBookings is the tutor's calendar view of their own bookings.
func (h *Handler) ListTutorBookings(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	filter, err := bookingFilter(c)
	if err != nil {
		return serviceError(c, err)
	}
	filter.TutorID = who.ID
	bookings, total, err := h.Bookings.List(c.UserContext(), who, filter)
	if err != nil {
		return serviceError(c, err)
	}
	return paginated(c, bookings, filter.Page, total)
}

func bookingFilter(c *fiber.Ctx) (services.BookingFilter, error) {
	f := services.BookingFilter{Status: c.Query("status"), Page: pageFromQuery(c)}
	var err error
	if f.TutorID, err = optionalUUID(c.Query("tutor_id"), "tutor_id"); err != nil {
		return f, err
	}
	if f.StudentID, err = optionalUUID(c.Query("student_id"), "student_id"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *Handler) GetBooking(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return serviceError(c, err)
	}
	booking, err := h.Bookings.Get(c.UserContext(), who, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(booking)
}

// UpdateBooking changes the status and/or the meeting link of a booking.
func (h *Handler) UpdateBooking(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return serviceError(c, err)
	}
	var req UpdateBookingRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err)
	}

	in := services.UpdateBookingInput{MeetingLink: req.MeetingLink}
	if req.Status != nil {
		status, err := services.ParseStatusFilter(*req.Status)
		if err != nil {
			return serviceError(c, err)
		}
		in.Status = &status
	}
	booking, err := h.Bookings.Update(c.UserContext(), who, id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(booking)
}

func (h *Handler) DeleteBooking(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.Bookings.Delete(c.UserContext(), who, id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SessionView is the session-shaped projection of a booking.
type SessionView struct {
	ID           uuid.UUID            `json:"id"`
	StudentID    uuid.UUID            `json:"student_id"`
	TutorID      uuid.UUID            `json:"tutor_id"`
	Subject      string               `json:"subject"`
	ScheduledFor time.Time            `json:"scheduled_for"`
	Duration     int                  `json:"duration"`
	Status       models.BookingStatus `json:"status"`
	Price        float64              `json:"price"`
	MeetingLink  *string              `json:"meeting_link"`
	Notes        *string              `json:"notes"`
	Student      *models.UserSummary  `json:"student,omitempty"`
	Tutor        *models.UserSummary  `json:"tutor,omitempty"`
}

func sessionView(b models.Booking) SessionView {
	v := SessionView{
		ID:           b.ID,
		StudentID:    b.StudentID,
		TutorID:      b.TutorID,
		Subject:      b.Subject,
		ScheduledFor: b.ScheduledFor(),
		Duration:     b.DurationMinutes(),
		Status:       b.Status,
		Price:        b.Price,
		MeetingLink:  b.MeetingLink,
		Notes:        b.Notes,
	}
	if b.Student != nil {
		s := b.Student.Summary()
		v.Student = &s
	}
	if b.Tutor != nil {
		t := b.Tutor.Summary()
		v.Tutor = &t
	}
	return v
}

func sessionViews(bookings []models.Booking) []SessionView {
	out := make([]SessionView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, sessionView(b))
	}
	return out
}

type CreateSessionRequest struct {
	TutorID      string    `json:"tutor_id" validate:"omitempty,uuid"`
	StudentID    string    `json:"student_id" validate:"omitempty,uuid"`
	Subject      string    `json:"subject" validate:"required,max=255"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Duration     int       `json:"duration" validate:"required,gt=0,lte=480"`
	Notes        *string   `json:"notes"`
	MeetingLink  *string   `json:"meeting_link" validate:"omitempty,url"`
}

// CreateSession books a session given its start and length in minutes. It
// goes through the same booking path, so the same conflict rules apply.
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	var req CreateSessionRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err)
	}
	in, err := bookingInput(req.TutorID, req.StudentID)
	if err != nil {
		return serviceError(c, err)
	}
	in.Subject = req.Subject
	in.StartTime = req.ScheduledFor
	in.EndTime = req.ScheduledFor.Add(time.Duration(req.Duration) * time.Minute)
	in.Notes = req.Notes
	in.MeetingLink = req.MeetingLink

	booking, err := h.Bookings.Create(c.UserContext(), who, in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sessionView(*booking))
}

func (h *Handler) ListSessions(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	filter, err := bookingFilter(c)
	if err != nil {
		return serviceError(c, err)
	}
	bookings, total, err := h.Bookings.List(c.UserContext(), who, filter)
	if err != nil {
		return serviceError(c, err)
	}
	return paginated(c, sessionViews(bookings), filter.Page, total)
}

// StudentSessions groups the caller's sessions by where they stand.
type StudentSessions struct {
	Upcoming  []SessionView `json:"upcoming"`
	Pending   []SessionView `json:"pending"`
	Completed []SessionView `json:"completed"`
	Cancelled []SessionView `json:"cancelled"`
}

func (h *Handler) ListStudentSessions(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	var bookings []models.Booking
	if err := h.DB.WithContext(c.UserContext()).
		Preload("Tutor").
		Where("student_id = ?", who.ID).
		Order("start_time ASC").
		Find(&bookings).Error; err != nil {
		return serviceError(c, err)
	}

	out := StudentSessions{
		Upcoming:  []SessionView{},
		Pending:   []SessionView{},
		Completed: []SessionView{},
		Cancelled: []SessionView{},
	}
	for _, b := range bookings {
		v := sessionView(b)
		switch b.Status {
		case models.BookingConfirmed:
			out.Upcoming = append(out.Upcoming, v)
		case models.BookingPending:
			out.Pending = append(out.Pending, v)
		case models.BookingCompleted:
			out.Completed = append(out.Completed, v)
		case models.BookingCancelled:
			out.Cancelled = append(out.Cancelled, v)
		}
	}
	return c.JSON(out)
}
