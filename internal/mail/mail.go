// Package mail delivers password-reset links, either directly over SMTP or
// through the background queue.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hugh/hr-manager/pkg/config"
	"gopkg.in/gomail.v2"
)

// Sender delivers a password-reset link to one address.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends mail through an authenticated SMTP relay. Without
// credentials it is disabled: messages are logged and dropped.
type SMTPSender struct {
	dialer   dialer
	from     string
	validFor time.Duration
	logger   *slog.Logger
}

func NewSMTPSender(cfg *config.MailConfig, validFor time.Duration, logger *slog.Logger) *SMTPSender {
	s := &SMTPSender{
		validFor: validFor,
		logger:   logger,
	}

	m := gomail.NewMessage()
	s.from = m.FormatAddress(cfg.From, cfg.FromName)

	if cfg.Enabled() {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	} else {
		logger.Warn("SMTP not configured, outgoing mail is disabled")
	}

	return s
}

func (s *SMTPSender) Enabled() bool {
	return s.dialer != nil
}

func (s *SMTPSender) SendPasswordReset(_ context.Context, to, resetURL string) error {
	if !s.Enabled() {
		s.logger.Info("mail disabled, dropping password reset email")
		return nil
	}

	body, err := renderReset(resetData{URL: resetURL, ValidFor: humanDuration(s.validFor)})
	if err != nil {
		return fmt.Errorf("rendering reset email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", resetSubject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short time"
	case d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	default:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}
}
