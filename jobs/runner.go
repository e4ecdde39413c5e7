package jobs

import (
	"time"

	"github.com/anjiri1684/tutor_marketplace/notifications"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/robfig/cron/v3"
)

// Runner holds the collaborators shared by the scheduled jobs.
type Runner struct {
	Bookings     *services.BookingService
	Publisher    services.Publisher
	Mailer       notifications.Mailer
	PendingTTL   time.Duration
	ReminderLead time.Duration
}

// Register schedules every job on c.
func (r *Runner) Register(c *cron.Cron) error {
	if _, err := c.AddFunc("*/5 * * * *", r.ExpireStalePendingBookings); err != nil {
		return err
	}
	if _, err := c.AddFunc("*/5 * * * *", r.SendSessionReminders); err != nil {
		return err
	}
	return nil
}
