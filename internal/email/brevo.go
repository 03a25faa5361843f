package email

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/rest"

	"accreditation-backend/internal/logger"
)

const DefaultBrevoBaseURL = "https://api.brevo.com"

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoAttachment struct {
	Content string `json:"content"`
	Name    string `json:"name"`
}

type brevoRequest struct {
	Sender      brevoContact      `json:"sender"`
	To          []brevoContact    `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

// BrevoSender posts to the Brevo transactional email API
type BrevoSender struct {
	apiKey  string
	baseURL string
	client  *rest.Client
}

func NewBrevoSender(apiKey, baseURL string, httpClient *http.Client) *BrevoSender {
	if baseURL == "" {
		baseURL = DefaultBrevoBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &BrevoSender{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &rest.Client{HTTPClient: httpClient},
	}
}

func (s *BrevoSender) Name() string { return "brevo" }

func (s *BrevoSender) Validate() error {
	if strings.TrimSpace(s.apiKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (s *BrevoSender) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := validateMessage(msg); err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildBrevoRequest(msg))
	if err != nil {
		return nil, fmt.Errorf("failed to encode brevo request: %w", err)
	}

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: s.baseURL + "/v3/smtp/email",
		Headers: map[string]string{
			"api-key":      s.apiKey,
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		Body: body,
	}

	logger.ExternalServiceCall("brevo", "send", "to", msg.To[0].Email, "attachments", len(msg.Attachments))
	resp, err := s.client.SendWithContext(ctx, req)
	if err != nil {
		logger.ExternalServiceResult("brevo", "send", err)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		perr := &ProviderError{Provider: "brevo", StatusCode: resp.StatusCode, Body: resp.Body}
		logger.ExternalServiceResult("brevo", "send", perr)
		return nil, perr
	}

	receipt := &Receipt{Provider: "brevo", StatusCode: resp.StatusCode}
	var parsed brevoResponse
	if err := json.Unmarshal([]byte(resp.Body), &parsed); err == nil {
		receipt.MessageID = parsed.MessageID
	}
	logger.ExternalServiceResult("brevo", "send", nil, "status", resp.StatusCode, "message_id", receipt.MessageID)
	return receipt, nil
}

func buildBrevoRequest(msg *Message) brevoRequest {
	req := brevoRequest{
		Sender:      brevoContact{Email: msg.From.Email, Name: msg.From.Name},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}
	for _, to := range msg.To {
		req.To = append(req.To, brevoContact{Email: to.Email, Name: to.Name})
	}
	for _, a := range msg.Attachments {
		req.Attachment = append(req.Attachment, brevoAttachment{
			Content: base64.StdEncoding.EncodeToString(a.Content),
			Name:    a.Name,
		})
	}
	return req
}
