package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/email"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/utils"
)

const (
	ApprovalSubject      = "Tu acreditación fue aprobada"
	RejectionSubject     = "Tu solicitud de acreditación fue rechazada"
	FailureDigestSubject = "Acreditaciones con correo pendiente"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

type emailService struct {
	sender     email.Sender
	from       email.Address
	systemName string
	loc        *time.Location
}

func NewEmailService(sender email.Sender, from email.Address, systemName string, loc *time.Location) EmailService {
	if loc == nil {
		loc = time.UTC
	}
	return &emailService{sender: sender, from: from, systemName: systemName, loc: loc}
}

func (s *emailService) Validate() error {
	return s.sender.Validate()
}

type decisionView struct {
	SystemName string
	Name       string
	PDFURL     string
	Wristband  string
}

func (s *emailService) SendApproval(ctx context.Context, req *domain.AccessRequest, artifact *Artifact, pdf []byte) (*email.Receipt, error) {
	if artifact == nil || len(pdf) == 0 {
		return nil, fmt.Errorf("%w: approval requires the credential document", ErrInvalidInput)
	}
	body, err := render("approval.html", decisionView{
		SystemName: s.systemName,
		Name:       req.FullName(),
		PDFURL:     artifact.URL,
		Wristband:  req.DisplayWristband(),
	})
	if err != nil {
		return nil, err
	}
	return s.sender.Send(ctx, &email.Message{
		From:    s.from,
		To:      []email.Address{{Email: req.Email, Name: req.FullName()}},
		Subject: ApprovalSubject,
		HTML:    body,
		Attachments: []email.Attachment{{
			Name:        artifact.FileName,
			ContentType: pdfContentType,
			Content:     pdf,
		}},
	})
}

func (s *emailService) SendRejection(ctx context.Context, req *domain.AccessRequest) (*email.Receipt, error) {
	body, err := render("rejection.html", decisionView{
		SystemName: s.systemName,
		Name:       req.FullName(),
	})
	if err != nil {
		return nil, err
	}
	return s.sender.Send(ctx, &email.Message{
		From:    s.from,
		To:      []email.Address{{Email: req.Email, Name: req.FullName()}},
		Subject: RejectionSubject,
		HTML:    body,
	})
}

type failureRow struct {
	ID      string
	Name    string
	Email   string
	Status  domain.Status
	Error   string
	ErrorAt string
}

func (s *emailService) SendFailureDigest(ctx context.Context, recipients []string, failures []domain.AccessRequest, generatedAt time.Time) error {
	if len(recipients) == 0 || len(failures) == 0 {
		return nil
	}

	rows := make([]failureRow, 0, len(failures))
	for _, f := range failures {
		row := failureRow{ID: f.ID, Name: f.FullName(), Email: f.Email, Status: f.Status, Error: f.EmailError}
		if f.EmailErrorAt != nil {
			row.ErrorAt = utils.FormatTimestamp(*f.EmailErrorAt, s.loc)
		}
		rows = append(rows, row)
	}

	body, err := render("failure_digest.html", struct {
		SystemName  string
		GeneratedAt string
		Failures    []failureRow
	}{s.systemName, utils.FormatTimestamp(generatedAt, s.loc), rows})
	if err != nil {
		return err
	}

	to := make([]email.Address, 0, len(recipients))
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, email.Address{Email: r})
		}
	}

	receipt, err := s.sender.Send(ctx, &email.Message{
		From:    s.from,
		To:      to,
		Subject: fmt.Sprintf("%s (%d)", FailureDigestSubject, len(rows)),
		HTML:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to send failure digest: %w", err)
	}
	logger.Info("Failure digest sent", "recipients", len(to), "failures", len(rows), "messageID", receipt.MessageID)
	return nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
