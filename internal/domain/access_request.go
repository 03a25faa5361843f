package domain

import (
	"errors"
	"strings"
	"time"
)

// WristbandUnassigned is the stored placeholder for a request whose
// wristband has not been handed out yet.
const WristbandUnassigned = "SIN_PULSERA_ASIGNADA"

// WristbandUnassignedLabel is what documents and QR payloads show instead
// of the stored placeholder.
const WristbandUnassignedLabel = "SIN PULSERA ASIGNADA"

var ErrNotFound = errors.New("not found")

type AccessRequest struct {
	ID              string `json:"id" firestore:"-"`
	FirstName       string `json:"firstName" firestore:"firstName"`
	PaternalSurname string `json:"paternalSurname" firestore:"paternalSurname"`
	MaternalSurname string `json:"maternalSurname" firestore:"maternalSurname"`
	Phone           string `json:"phone" firestore:"phone"`
	Email           string `json:"email" firestore:"email"`
	FunctionID      string `json:"functionId" firestore:"functionId"`
	CompanyID       string `json:"companyId" firestore:"companyId"`
	AreaID          string `json:"areaId" firestore:"areaId"`

	Status     Status     `json:"status" firestore:"status"`
	ReviewedBy string     `json:"reviewedBy,omitempty" firestore:"reviewedBy,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty" firestore:"reviewedAt,omitempty"`

	WristbandCode  string     `json:"wristbandCode" firestore:"wristbandCode"`
	PDFURL         string     `json:"pdfUrl,omitempty" firestore:"pdfUrl,omitempty"`
	PDFGeneratedAt *time.Time `json:"pdfGeneratedAt,omitempty" firestore:"pdfGeneratedAt,omitempty"`
	// EmailSent is nil until the pipeline has attempted a notification.
	EmailSent    *bool      `json:"emailSent,omitempty" firestore:"emailSent,omitempty"`
	EmailSentAt  *time.Time `json:"emailSentAt,omitempty" firestore:"emailSentAt,omitempty"`
	EmailError   string     `json:"emailError,omitempty" firestore:"emailError,omitempty"`
	EmailErrorAt *time.Time `json:"emailErrorAt,omitempty" firestore:"emailErrorAt,omitempty"`

	CreatedAt *time.Time `json:"createdAt,omitempty" firestore:"createdAt,omitempty"`
}

// FullName joins the first name and both surnames, skipping empty parts.
func (r *AccessRequest) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.FirstName, r.PaternalSurname, r.MaternalSurname} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func (r *AccessRequest) HasWristband() bool {
	code := strings.TrimSpace(r.WristbandCode)
	return code != "" && code != WristbandUnassigned
}

// DisplayWristband returns the wristband code as it must appear on the
// credential and inside the QR payload.
func (r *AccessRequest) DisplayWristband() string {
	if !r.HasWristband() {
		return WristbandUnassignedLabel
	}
	return strings.TrimSpace(r.WristbandCode)
}
