package email

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"accreditation-backend/internal/logger"
)

// SMTPSender relays through a plain SMTP server (MailHog, Postfix, ...)
type SMTPSender struct {
	host string
	port int
	dial func(m ...*gomail.Message) error
}

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	d := gomail.NewDialer(host, port, username, password)
	return &SMTPSender{host: host, port: port, dial: d.DialAndSend}
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Validate() error {
	if s.host == "" {
		return fmt.Errorf("smtp host is not configured")
	}
	return nil
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := validateMessage(msg); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.ExternalServiceCall("smtp", "send", "host", s.host, "to", msg.To[0].Email)
	if err := s.dial(buildGomailMessage(msg)); err != nil {
		logger.ExternalServiceResult("smtp", "send", err)
		return nil, fmt.Errorf("failed to send email via gomail: %w", err)
	}
	logger.ExternalServiceResult("smtp", "send", nil)
	return &Receipt{Provider: "smtp"}, nil
}

func buildGomailMessage(msg *Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", msg.From.Email, msg.From.Name)

	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, m.FormatAddress(addr.Email, addr.Name))
	}
	m.SetHeader("To", to...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	for _, a := range msg.Attachments {
		content := a.Content
		m.Attach(a.Name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}
	return m
}
