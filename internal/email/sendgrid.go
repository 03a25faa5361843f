package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"accreditation-backend/internal/logger"
)

const DefaultSendGridHost = "https://api.sendgrid.com"

// SendGridSender uses the SendGrid v3 mail API
type SendGridSender struct {
	apiKey string
	host   string
}

func NewSendGridSender(apiKey, host string) *SendGridSender {
	if host == "" {
		host = DefaultSendGridHost
	}
	return &SendGridSender{apiKey: apiKey, host: strings.TrimRight(host, "/")}
}

func (s *SendGridSender) Name() string { return "sendgrid" }

func (s *SendGridSender) Validate() error {
	if strings.TrimSpace(s.apiKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (s *SendGridSender) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := validateMessage(msg); err != nil {
		return nil, err
	}

	request := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(buildSendGridMail(msg))

	logger.ExternalServiceCall("sendgrid", "send", "to", msg.To[0].Email, "attachments", len(msg.Attachments))
	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		perr := &ProviderError{Provider: "sendgrid", StatusCode: resp.StatusCode, Body: resp.Body}
		logger.ExternalServiceResult("sendgrid", "send", perr)
		return nil, perr
	}

	receipt := &Receipt{Provider: "sendgrid", StatusCode: resp.StatusCode}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		receipt.MessageID = ids[0]
	}
	logger.ExternalServiceResult("sendgrid", "send", nil, "status", resp.StatusCode, "message_id", receipt.MessageID)
	return receipt, nil
}

func buildSendGridMail(msg *Message) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(msg.From.Name, msg.From.Email))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail(to.Name, to.Email))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", msg.HTML))

	for _, a := range msg.Attachments {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.ContentType)
		att.SetFilename(a.Name)
		att.SetDisposition("attachment")
		m.AddAttachment(att)
	}
	return m
}
