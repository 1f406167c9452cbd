package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/hospital-portal/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, email string, name string, patientID string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

// dialer is the part of *gomail.Dialer the SMTP service uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	from   string
	dialer dialer
}

// NewService returns an SMTP-backed service, or a no-op one when email is
// disabled.
func NewService(cfg config.EmailConfig) Service {
	if !cfg.Enabled {
		return NewNopService()
	}
	return &smtpService{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, email, name, patientID string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour patient account has been created.\nPatient ID: %s\n\nUse this id with your password to sign in to the patient portal.\n",
		name, patientID,
	)
	return s.SendCustom(ctx, email, "Welcome to the Hospital Portal", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

type nopService struct{}

func NewNopService() Service {
	return nopService{}
}

func (nopService) SendWelcome(context.Context, string, string, string) error { return nil }

func (nopService) SendCustom(context.Context, string, string, string) error { return nil }
