package handlers

import (
	"strings"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

// ListUsers pages through accounts, optionally filtered by role or a
// name/email search.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	q := h.DB.WithContext(c.UserContext()).Model(&models.User{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}
	if raw := c.Query("role"); raw != "" {
		role := models.Role(strings.ToUpper(raw))
		if !role.Valid() {
			return fail(c, fiber.StatusBadRequest, codeInvalidArgument, "unknown role")
		}
		q = q.Where("role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return serviceError(c, err)
	}
	users := []models.User{}
	if err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return serviceError(c, err)
	}
	return paginated(c, users, page, total)
}

type DashboardStats struct {
	UsersByRole        map[models.Role]int64          `json:"users_by_role"`
	BookingsByStatus   map[models.BookingStatus]int64 `json:"bookings_by_status"`
	CompletedRevenue   float64                        `json:"completed_revenue"`
	BookingsLast30Days int64                          `json:"bookings_last_30_days"`
	RecentBookings     []models.Booking               `json:"recent_bookings"`
}

func (h *Handler) GetDashboardStats(c *fiber.Ctx) error {
	db := h.DB.WithContext(c.UserContext())
	stats := DashboardStats{
		UsersByRole:      map[models.Role]int64{},
		BookingsByStatus: map[models.BookingStatus]int64{},
		RecentBookings:   []models.Booking{},
	}

	var roles []struct {
		Role  models.Role
		Count int64
	}
	if err := db.Model(&models.User{}).Select("role, count(*) as count").Group("role").Scan(&roles).Error; err != nil {
		return serviceError(c, err)
	}
	for _, r := range roles {
		stats.UsersByRole[r.Role] = r.Count
	}

	var statuses []struct {
		Status models.BookingStatus
		Count  int64
	}
	if err := db.Model(&models.Booking{}).Select("status, count(*) as count").Group("status").Scan(&statuses).Error; err != nil {
		return serviceError(c, err)
	}
	for _, s := range statuses {
		stats.BookingsByStatus[s.Status] = s.Count
	}

	var revenue struct{ Total float64 }
	if err := db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentCompleted).
		Select("coalesce(sum(amount), 0) as total").
		Scan(&revenue).Error; err != nil {
		return serviceError(c, err)
	}
	stats.CompletedRevenue = revenue.Total

	since := time.Now().UTC().AddDate(0, 0, -30)
	if err := db.Model(&models.Booking{}).Where("created_at > ?", since).Count(&stats.BookingsLast30Days).Error; err != nil {
		return serviceError(c, err)
	}
	if err := db.Preload("Student").Preload("Tutor").
		Order("created_at DESC").Limit(5).
		Find(&stats.RecentBookings).Error; err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}

func (h *Handler) DeleteReview(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.Reviews.Delete(c.UserContext(), who, id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
