package notification

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailSender отправляет письма через SMTP
type EmailSender struct {
	client *mail.Client
	from   string
}

func NewEmailSender(cfg SMTPConfig) (*EmailSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &EmailSender{client: client, from: cfg.From}, nil
}

func (s *EmailSender) Channel() string { return "email" }

func (s *EmailSender) CanDeliver(r model.Requester) bool {
	return r.Email != ""
}

func (s *EmailSender) Send(ctx context.Context, r model.Requester, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.AddToFormat(r.Name, r.Email); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
