package credential

import (
	"encoding/json"
	"fmt"

	"github.com/skip2/go-qrcode"

	"accreditation-backend/internal/domain"
)

// DefaultQRSize is the pixel width of the generated QR bitmap.
const DefaultQRSize = 300

// Payload is the verification record carried by the QR code. It is plain
// JSON: anyone who scans it can read every field.
type Payload struct {
	WristbandCode   string `json:"wristbandCode"`
	FirstName       string `json:"firstName"`
	PaternalSurname string `json:"paternalSurname"`
	Area            string `json:"area"`
	Function        string `json:"function"`
	Company         string `json:"company"`
	Email           string `json:"email"`
}

func NewPayload(req *domain.AccessRequest, names domain.ReferenceNames) Payload {
	names = names.NamesOrFallback()
	return Payload{
		WristbandCode:   req.DisplayWristband(),
		FirstName:       req.FirstName,
		PaternalSurname: req.PaternalSurname,
		Area:            names.Area,
		Function:        names.Function,
		Company:         names.Company,
		Email:           req.Email,
	}
}

func (p Payload) JSON() ([]byte, error) {
	return json.Marshal(p)
}

// EncodeQR renders the payload as a PNG QR code with high error
// correction, a fixed pixel width and no quiet zone.
func EncodeQR(p Payload, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	content, err := p.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize qr payload: %w", err)
	}

	code, err := qrcode.New(string(content), qrcode.High)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	code.DisableBorder = true

	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr bitmap: %w", err)
	}
	return png, nil
}
