package jobs

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/notifications"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/rs/zerolog/log"
)

type SessionReminder struct {
	BookingID   string    `json:"booking_id"`
	Subject     string    `json:"subject"`
	StartTime   time.Time `json:"start_time"`
	MeetingLink *string   `json:"meeting_link"`
}

// SendSessionReminders notifies both parties, once per booking, of confirmed
// sessions starting within ReminderLead.
func (r *Runner) SendSessionReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	upcoming, err := r.Bookings.DueReminders(ctx, r.ReminderLead)
	if err != nil {
		log.Error().Err(err).Msg("check for upcoming sessions")
		return
	}

	for _, b := range upcoming {
		claimed, err := r.Bookings.ClaimReminder(ctx, b.ID)
		if err != nil {
			log.Error().Err(err).Str("booking_id", b.ID.String()).Msg("claim session reminder")
			continue
		}
		if !claimed {
			continue
		}
		reminder := SessionReminder{
			BookingID:   b.ID.String(),
			Subject:     b.Subject,
			StartTime:   b.StartTime,
			MeetingLink: b.MeetingLink,
		}
		if r.Publisher != nil {
			r.Publisher.Publish(b.StudentID.String(), services.EventSessionReminder, reminder)
			r.Publisher.Publish(b.TutorID.String(), services.EventSessionReminder, reminder)
		}

		subject := fmt.Sprintf("Reminder: your %s session starts soon", b.Subject)
		body := reminderEmail(b)
		for _, u := range []*models.User{b.Student, b.Tutor} {
			if u != nil {
				notifications.SendAsync(r.Mailer, u.Name, u.Email, subject, body)
			}
		}
		log.Info().Str("booking_id", b.ID.String()).Msg("session reminder sent")
	}
}

func reminderEmail(b models.Booking) string {
	link := "Your tutor will share a meeting link before the session."
	if b.MeetingLink != nil && *b.MeetingLink != "" {
		l := html.EscapeString(*b.MeetingLink)
		link = fmt.Sprintf("<b>Meeting link:</b> <a href='%s'>%s</a>", l, l)
	}
	return fmt.Sprintf(
		"<h1>Session reminder</h1><p>Your %s session is scheduled for %s (%d minutes).</p><p>%s</p>",
		html.EscapeString(b.Subject),
		b.StartTime.Format("Mon Jan 2, 15:04 MST"),
		b.DurationMinutes(),
		link,
	)
}
