package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"accreditation-backend/internal/config"
)

// ErrMissingAPIKey means the provider cannot be called at all. Pipelines
// treat it as a configuration error and do not retry.
var ErrMissingAPIKey = errors.New("email provider api key is not configured")

type Address struct {
	Email string
	Name  string
}

type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

type Message struct {
	From        Address
	To          []Address
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Receipt is what the provider acknowledged. Delivery itself is not
// confirmed; bounces and quota rejections happen later on their side.
type Receipt struct {
	Provider   string
	StatusCode int
	MessageID  string
}

// Sender submits transactional email to one provider
type Sender interface {
	Name() string
	// Validate reports configuration problems without calling the provider
	Validate() error
	Send(ctx context.Context, msg *Message) (*Receipt, error)
}

// ProviderError is returned when the provider answers with an error status
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
}

func validateMessage(msg *Message) error {
	if msg == nil {
		return errors.New("email message is nil")
	}
	if len(msg.To) == 0 {
		return errors.New("email message has no recipients")
	}
	for _, to := range msg.To {
		if to.Email == "" {
			return errors.New("email recipient has no address")
		}
	}
	if msg.From.Email == "" {
		return errors.New("email message has no sender")
	}
	return nil
}

// New builds the sender selected by configuration
func New(cfg config.EmailConfig, httpClient *http.Client) (Sender, error) {
	switch cfg.Provider {
	case "", "brevo":
		return NewBrevoSender(cfg.APIKey, cfg.BaseURL, httpClient), nil
	case "sendgrid":
		return NewSendGridSender(cfg.APIKey, cfg.BaseURL), nil
	case "smtp":
		return NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}
