package credential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageWidth   = 210.0
	pageHeight  = 297.0
	margin      = 12.0
	headerH     = 36.0
	columnGap   = 6.0
	leftColumnW = 118.0
	sectionPad  = 4.0
	sectionGap  = 6.0
	labelW      = 24.0
	rowLineH    = 5.0
	qrPanelH    = 96.0
	qrImageSize = 52.0
	panelRadius = 3.0
	footerH     = 16.0
)

var (
	headerColor  = [3]int{11, 61, 145}
	borderColor  = [3]int{11, 61, 145}
	textColor    = [3]int{33, 37, 41}
	mutedColor   = [3]int{108, 117, 125}
	warningFill  = [3]int{255, 243, 205}
	warningLine  = [3]int{230, 160, 0}
	warningTitle = [3]int{133, 77, 14}
)

// Renderer draws credential documents as PDF.
type Renderer struct {
	opts Options
	now  func() time.Time
}

func NewRenderer(opts Options) *Renderer {
	if opts.QRSize <= 0 {
		opts.QRSize = DefaultQRSize
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Renderer{opts: opts, now: time.Now}
}

// Render lays out and draws the credential for one approved request.
func (r *Renderer) Render(ctx context.Context, in Input) ([]byte, error) {
	if in.Request == nil {
		return nil, errors.New("credential input has no access request")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qr, err := EncodeQR(NewPayload(in.Request, in.Names), r.opts.QRSize)
	if err != nil {
		return nil, err
	}

	doc := BuildDocument(in, r.opts, r.now())
	return r.Draw(doc, qr)
}

// Draw serializes a laid-out document with the given QR bitmap.
func (r *Renderer) Draw(doc Document, qrPNG []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.opts.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator(r.opts.SystemName, true)
	pdf.AddPage()

	d := &drawer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() { d.footer(doc.Footer) })

	d.header(doc.Title, doc.Subtitle)

	top := headerH + 10
	leftEnd := d.section(margin, top, leftColumnW, doc.Person)
	leftEnd = d.section(margin, leftEnd+sectionGap, leftColumnW, doc.Matchday)

	rightX := margin + leftColumnW + columnGap
	rightW := pageWidth - margin - rightX
	qrEnd := d.qrPanel(rightX, top, rightW, doc.QRHeading, doc.QRCaption, qrPNG)

	warnTop := leftEnd
	if qrEnd > warnTop {
		warnTop = qrEnd
	}
	d.warnings(margin, warnTop+8, pageWidth-2*margin, doc.Warnings)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render credential pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type drawer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (d *drawer) color(c [3]int, set func(r, g, b int)) {
	set(c[0], c[1], c[2])
}

func (d *drawer) header(title, subtitle string) {
	pdf := d.pdf
	d.color(headerColor, pdf.SetFillColor)
	pdf.Rect(0, 0, pageWidth, headerH, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(margin, 9)
	pdf.CellFormat(pageWidth-2*margin, 10, d.tr(title), "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetXY(margin, 21)
	pdf.CellFormat(pageWidth-2*margin, 7, d.tr(subtitle), "", 0, "C", false, 0, "")
}

// section draws a bold title, a separator, wrapped label/value rows and a
// rounded border sized to the content. It returns the bottom edge.
func (d *drawer) section(x, y, w float64, s Section) float64 {
	pdf := d.pdf
	inner := w - 2*sectionPad
	cy := y + sectionPad

	d.color(borderColor, pdf.SetTextColor)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(x+sectionPad, cy)
	pdf.CellFormat(inner, 6, d.tr(s.Title), "", 0, "L", false, 0, "")
	cy += 7

	d.color(borderColor, pdf.SetDrawColor)
	pdf.SetLineWidth(0.3)
	pdf.Line(x+sectionPad, cy, x+w-sectionPad, cy)
	cy += 3

	d.color(textColor, pdf.SetTextColor)
	for _, row := range s.Rows {
		if row.Label == "" {
			pdf.SetFont("Helvetica", "I", 9)
			cy = d.wrapped(x+sectionPad, cy, inner, row.Value)
		} else {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetXY(x+sectionPad, cy)
			pdf.CellFormat(labelW, rowLineH, d.tr(row.Label+":"), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			cy = d.wrapped(x+sectionPad+labelW, cy, inner-labelW, row.Value)
		}
		cy += 1
	}
	cy += sectionPad - 1

	pdf.SetLineWidth(0.5)
	pdf.RoundedRect(x, y, w, cy-y, panelRadius, "1234", "D")
	return cy
}

// wrapped writes text split to width w and returns the next free line.
func (d *drawer) wrapped(x, y, w float64, text string) float64 {
	lines := d.pdf.SplitLines([]byte(d.tr(text)), w)
	if len(lines) == 0 {
		return y + rowLineH
	}
	for _, line := range lines {
		d.pdf.SetXY(x, y)
		d.pdf.CellFormat(w, rowLineH, string(line), "", 0, "L", false, 0, "")
		y += rowLineH
	}
	return y
}

// qrPanel draws the fixed-height verification panel and returns its
// bottom edge.
func (d *drawer) qrPanel(x, y, w float64, heading, caption string, qrPNG []byte) float64 {
	pdf := d.pdf

	d.color(borderColor, pdf.SetDrawColor)
	pdf.SetLineWidth(0.5)
	pdf.RoundedRect(x, y, w, qrPanelH, panelRadius, "1234", "D")

	d.color(borderColor, pdf.SetTextColor)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x+2, y+sectionPad)
	pdf.CellFormat(w-4, 6, d.tr(heading), "", 0, "C", false, 0, "")

	d.image("qr", qrPNG, x+(w-qrImageSize)/2, y+14, qrImageSize, qrImageSize)

	d.color(mutedColor, pdf.SetTextColor)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(x+sectionPad, y+14+qrImageSize+4)
	pdf.MultiCell(w-2*sectionPad, 4, d.tr(caption), "", "C", false)

	return y + qrPanelH
}

// image embeds a pre-rendered PNG bitmap at the given position and size.
func (d *drawer) image(name string, png []byte, x, y, w, h float64) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	d.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

func (d *drawer) warnings(x, y, w float64, items []string) {
	pdf := d.pdf
	inner := w - 2*sectionPad - 4

	pdf.SetFont("Helvetica", "", 9)
	var wrapped [][][]byte
	height := sectionPad + 7
	for _, item := range items {
		lines := pdf.SplitLines([]byte(d.tr("• "+item)), inner)
		wrapped = append(wrapped, lines)
		height += float64(len(lines)) * 4.5
	}
	height += sectionPad

	if y+height > pageHeight-footerH-4 {
		pdf.AddPage()
		y = margin
	}

	d.color(warningFill, pdf.SetFillColor)
	d.color(warningLine, pdf.SetDrawColor)
	pdf.SetLineWidth(0.6)
	pdf.RoundedRect(x, y, w, height, panelRadius, "1234", "DF")

	cy := y + sectionPad
	d.color(warningTitle, pdf.SetTextColor)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x+sectionPad, cy)
	pdf.CellFormat(w-2*sectionPad, 6, d.tr(WarningTitle), "", 0, "L", false, 0, "")
	cy += 7

	d.color(textColor, pdf.SetTextColor)
	pdf.SetFont("Helvetica", "", 9)
	for _, lines := range wrapped {
		for _, line := range lines {
			pdf.SetXY(x+sectionPad+2, cy)
			pdf.CellFormat(inner, 4.5, string(line), "", 0, "L", false, 0, "")
			cy += 4.5
		}
	}
}

// footer runs as the fpdf footer func, once per page.
func (d *drawer) footer(text string) {
	pdf := d.pdf
	y := pageHeight - footerH

	d.color(mutedColor, pdf.SetDrawColor)
	pdf.SetLineWidth(0.2)
	pdf.Line(margin, y, pageWidth-margin, y)

	d.color(mutedColor, pdf.SetTextColor)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(margin, y+3)
	pdf.CellFormat(pageWidth-2*margin, 5, d.tr(text), "", 0, "C", false, 0, "")
}
