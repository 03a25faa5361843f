package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accreditation-backend/internal/domain"
)

func sampleRequest() *domain.AccessRequest {
	return &domain.AccessRequest{
		ID:              "req-1",
		FirstName:       "Lucía",
		PaternalSurname: "Hernández",
		MaternalSurname: "Soto",
		Email:           "lucia@example.com",
		WristbandCode:   domain.WristbandUnassigned,
		Status:          domain.StatusApproved,
	}
}

func sampleMatchday() *domain.Matchday {
	return &domain.Matchday{
		Number:   12,
		HomeTeam: "Tigres",
		AwayTeam: "Pumas",
		Venue:    "Estadio Universitario",
		Date:     "2026-10-17",
		Time:     "19:00",
		Active:   true,
	}
}

func testOptions() Options {
	return Options{
		SystemName: "Sistema de Acreditaciones",
		Title:      "ACREDITACIÓN DE ACCESO",
		Subtitle:   "Credencial personal e intransferible",
		Location:   time.UTC,
		QRSize:     200,
		Compress:   false,
	}
}

func TestNewPayload(t *testing.T) {
	t.Run("Sentinel wristband", func(t *testing.T) {
		p := NewPayload(sampleRequest(), domain.ReferenceNames{Area: "Prensa"})
		assert.Equal(t, domain.WristbandUnassignedLabel, p.WristbandCode)
		assert.Equal(t, "Prensa", p.Area)
		assert.Equal(t, domain.NotSpecified, p.Function)
		assert.Equal(t, domain.NotSpecified, p.Company)
	})

	t.Run("Empty wristband", func(t *testing.T) {
		req := sampleRequest()
		req.WristbandCode = ""
		p := NewPayload(req, domain.ReferenceNames{})
		assert.Equal(t, domain.WristbandUnassignedLabel, p.WristbandCode)
	})

	t.Run("Assigned wristband and JSON shape", func(t *testing.T) {
		req := sampleRequest()
		req.WristbandCode = "PUL-0042"
		raw, err := NewPayload(req, domain.ReferenceNames{Area: "Prensa", Function: "Fotógrafo", Company: "Diario"}).JSON()
		require.NoError(t, err)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(raw, &fields))
		assert.Equal(t, map[string]string{
			"wristbandCode":   "PUL-0042",
			"firstName":       "Lucía",
			"paternalSurname": "Hernández",
			"area":            "Prensa",
			"function":        "Fotógrafo",
			"company":         "Diario",
			"email":           "lucia@example.com",
		}, fields)
	})
}

func TestEncodeQR(t *testing.T) {
	img, err := EncodeQR(NewPayload(sampleRequest(), domain.ReferenceNames{}), 300)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestBuildDocument(t *testing.T) {
	generated := time.Date(2026, time.October, 15, 18, 30, 0, 0, time.UTC)

	t.Run("Person section with fallbacks", func(t *testing.T) {
		doc := BuildDocument(Input{Request: sampleRequest(), Names: domain.ReferenceNames{Function: "Seguridad"}}, testOptions(), generated)

		assert.Equal(t, PersonSectionTitle, doc.Person.Title)
		assert.Equal(t, []Row{
			{Label: "Nombre", Value: "Lucía Hernández Soto"},
			{Label: "Área", Value: domain.NotSpecified},
			{Label: "Función", Value: "Seguridad"},
			{Label: "Empresa", Value: domain.NotSpecified},
			{Label: "Pulsera", Value: domain.WristbandUnassignedLabel},
		}, doc.Person.Rows)
		assert.Equal(t, "Sistema de Acreditaciones · Generado el 15 de octubre de 2026, 18:30 h", doc.Footer)
		assert.Len(t, doc.Warnings, 7)
	})

	t.Run("No active matchday", func(t *testing.T) {
		doc := BuildDocument(Input{Request: sampleRequest()}, testOptions(), generated)
		assert.Equal(t, MatchdaySectionTitle, doc.Matchday.Title)
		require.Len(t, doc.Matchday.Rows, 1)
		assert.Equal(t, NoActiveMatchday, doc.Matchday.Rows[0].Value)
	})

	t.Run("Active matchday", func(t *testing.T) {
		doc := BuildDocument(Input{Request: sampleRequest(), Matchday: sampleMatchday()}, testOptions(), generated)
		assert.Equal(t, []Row{
			{Label: "Jornada", Value: "12"},
			{Label: "Partido", Value: "Tigres vs Pumas"},
			{Label: "Fecha", Value: "sábado 17 de octubre de 2026"},
			{Label: "Hora", Value: "19:00 h"},
			{Label: "Estadio", Value: "Estadio Universitario"},
		}, doc.Matchday.Rows)
	})
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer(testOptions())
	r.now = func() time.Time { return time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	t.Run("Missing matchday and wristband", func(t *testing.T) {
		out, err := r.Render(ctx, Input{Request: sampleRequest(), Names: domain.ReferenceNames{Area: "Prensa"}})
		require.NoError(t, err)

		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		assert.Contains(t, string(out), domain.WristbandUnassignedLabel)
		assert.NotContains(t, string(out), domain.WristbandUnassigned)
		assert.Contains(t, string(out), NoActiveMatchday)
		assert.Contains(t, string(out), "Prensa")
	})

	t.Run("With matchday", func(t *testing.T) {
		req := sampleRequest()
		req.WristbandCode = "PUL-0042"
		out, err := r.Render(ctx, Input{Request: req, Matchday: sampleMatchday()})
		require.NoError(t, err)

		assert.Contains(t, string(out), "PUL-0042")
		assert.Contains(t, string(out), "Tigres vs Pumas")
		assert.NotContains(t, string(out), NoActiveMatchday)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Render(cctx, Input{Request: sampleRequest()})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Footer on every page when warnings overflow", func(t *testing.T) {
		doc := BuildDocument(Input{Request: sampleRequest()}, testOptions(), time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC))
		doc.Warnings = append([]string(nil), doc.Warnings...)
		for i := 0; i < 30; i++ {
			doc.Warnings = append(doc.Warnings, "Aviso adicional para el personal acreditado durante la jornada.")
		}
		qr, err := EncodeQR(NewPayload(sampleRequest(), domain.ReferenceNames{}), 200)
		require.NoError(t, err)

		out, err := r.Draw(doc, qr)
		require.NoError(t, err)
		assert.Equal(t, 2, bytes.Count(out, []byte("Generado el")))
	})

	t.Run("Single page credential has one footer", func(t *testing.T) {
		out, err := r.Render(ctx, Input{Request: sampleRequest(), Matchday: sampleMatchday()})
		require.NoError(t, err)
		assert.Equal(t, 1, bytes.Count(out, []byte("Generado el")))
	})

	t.Run("Nil request", func(t *testing.T) {
		_, err := r.Render(ctx, Input{})
		assert.Error(t, err)
	})
}
