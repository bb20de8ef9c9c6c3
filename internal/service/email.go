package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/boardadmin/boardadmin/internal/metrics"
	"github.com/resend/resend-go/v2"
)

// Mailer sends plain-text email. Handlers depend on this rather than on
// EmailService so tests can capture messages.
type Mailer interface {
	SendSimpleMessage(to, subject, body string) error
}

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
	}
}

// SendSimpleMessage delivers a plain-text message. In development the
// message is only logged.
func (s *EmailService) SendSimpleMessage(to, subject, body string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "to", to, "subject", subject, "body", body)
		metrics.EmailsSent.WithLabelValues("logged").Inc()
		return nil
	}

	if s.client == nil {
		metrics.EmailsSent.WithLabelValues("failed").Inc()
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		metrics.EmailsSent.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to send email: %w", err)
	}

	metrics.EmailsSent.WithLabelValues("sent").Inc()
	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}
