package credential

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/utils"
)

const (
	PersonSectionTitle   = "DATOS DE LA PERSONA ACREDITADA"
	MatchdaySectionTitle = "DATOS DE LA JORNADA"
	QRHeading            = "CÓDIGO DE VERIFICACIÓN"
	QRCaption            = "Presenta este código junto con tu identificación oficial en el módulo de acreditación."
	WarningTitle         = "AVISO IMPORTANTE"
	NoActiveMatchday     = "No hay jornada activa disponible"
)

// Warnings are printed on every credential.
var Warnings = []string{
	"Este código QR no garantiza el acceso al estadio.",
	"Es obligatorio acudir al módulo de acreditación para el registro y la colocación de la pulsera.",
	"Esta acreditación no es un boleto de entrada.",
	"Es personal e intransferible.",
	"Debe presentarse junto con una identificación oficial vigente.",
	"Válida únicamente para el partido indicado.",
	"No válida para menores de edad.",
}

// Input is everything needed to lay out one credential.
type Input struct {
	Request  *domain.AccessRequest
	Names    domain.ReferenceNames
	Matchday *domain.Matchday // nil when no matchday is active
}

type Row struct {
	Label string
	Value string
}

type Section struct {
	Title string
	Rows  []Row
}

// Document is the layout model of a credential, independent of the PDF
// drawing code.
type Document struct {
	Title     string
	Subtitle  string
	Person    Section
	Matchday  Section
	QRHeading string
	QRCaption string
	Warnings  []string
	Footer    string
}

// Options configure the fixed parts of the document.
type Options struct {
	SystemName string
	Title      string
	Subtitle   string
	Location   *time.Location
	QRSize     int
	Compress   bool
}

func BuildDocument(in Input, opts Options, generatedAt time.Time) Document {
	req := in.Request
	names := in.Names.NamesOrFallback()

	return Document{
		Title:    opts.Title,
		Subtitle: opts.Subtitle,
		Person: Section{
			Title: PersonSectionTitle,
			Rows: []Row{
				{Label: "Nombre", Value: valueOrFallback(req.FullName())},
				{Label: "Área", Value: names.Area},
				{Label: "Función", Value: names.Function},
				{Label: "Empresa", Value: names.Company},
				{Label: "Pulsera", Value: req.DisplayWristband()},
			},
		},
		Matchday:  matchdaySection(in.Matchday),
		QRHeading: QRHeading,
		QRCaption: QRCaption,
		Warnings:  Warnings,
		Footer: fmt.Sprintf("%s · Generado el %s",
			opts.SystemName, utils.FormatTimestamp(generatedAt, opts.Location)),
	}
}

func matchdaySection(m *domain.Matchday) Section {
	if m == nil {
		return Section{
			Title: MatchdaySectionTitle,
			Rows:  []Row{{Value: NoActiveMatchday}},
		}
	}
	return Section{
		Title: MatchdaySectionTitle,
		Rows: []Row{
			{Label: "Jornada", Value: strconv.Itoa(m.Number)},
			{Label: "Partido", Value: fmt.Sprintf("%s vs %s",
				valueOrFallback(m.HomeTeam), valueOrFallback(m.AwayTeam))},
			{Label: "Fecha", Value: valueOrFallback(utils.FormatMatchDate(m.Date))},
			{Label: "Hora", Value: valueOrFallback(utils.FormatMatchTime(m.Time))},
			{Label: "Estadio", Value: valueOrFallback(m.Venue)},
		},
	}
}

func valueOrFallback(v string) string {
	if strings.TrimSpace(v) == "" {
		return domain.NotSpecified
	}
	return v
}
