package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	config "github.com/anjiri1684/tutor_marketplace/configs"
	"github.com/rs/zerolog/log"
)

const defaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error
}

// NopMailer drops every message. Used when Brevo is not configured.
type NopMailer struct{}

func (NopMailer) Send(context.Context, string, string, string, string) error { return nil }

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	BaseURL     string
	Client      *http.Client
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewMailer returns a Brevo client, or NopMailer when credentials are missing.
func NewMailer(settings config.Settings) Mailer {
	if settings.BrevoAPIKey == "" || settings.EmailSender == "" {
		log.Warn().Msg("email service not configured, outgoing email disabled")
		return NopMailer{}
	}
	log.Info().Str("sender", settings.EmailSender).Msg("email service initialized")
	return &BrevoService{
		APIKey:      settings.BrevoAPIKey,
		SenderEmail: settings.EmailSender,
		SenderName:  settings.EmailSenderName,
	}
}

func (s *BrevoService) Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %q", toEmail)
	}
	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := s.BaseURL
	if url == "" {
		url = defaultBrevoURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// SendAsync fires Send in the background and logs the outcome.
func SendAsync(m Mailer, toName, toEmail, subject, htmlContent string) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := m.Send(ctx, toName, toEmail, subject, htmlContent); err != nil {
			log.Error().Err(err).Str("to", toEmail).Str("subject", subject).Msg("failed to send email")
			return
		}
		log.Debug().Str("to", toEmail).Str("subject", subject).Msg("email sent")
	}()
}
