package mailer

import (
	"context"
	"fmt"

	"ffclash/internal/platform/config"
	"ffclash/internal/platform/logger"

	"github.com/wneessen/go-mail"
)

// SMTPMailer sends plain text mail through the configured relay.
type SMTPMailer struct {
	from   string
	client *mail.Client
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPMailer{from: cfg.SMTPFrom, client: client}, nil
}

// BuildMessage assembles the message without sending it.
func BuildMessage(from, to, subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}

func (s *SMTPMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	m, err := BuildMessage(s.from, to, subject, body)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer stands in when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) SendEmail(_ context.Context, to, subject, body string) error {
	logger.WithField("to", to).Infof("email (smtp disabled): %s\n%s", subject, body)
	return nil
}
