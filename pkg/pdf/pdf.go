package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Party is the issuer or recipient block of a document
type Party struct {
	Name    string
	Company string
	Email   string
	Phone   string
	Address string
}

// Line is one formatted row of the item table
type Line struct {
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

// Row is one label/amount pair of the totals block
type Row struct {
	Label string
	Value string
	Bold  bool
}

// Document is a print-ready view of a quote, purchase order or invoice.
// Amounts are expected to be formatted already.
type Document struct {
	Title     string
	Number    string
	IssuedAt  time.Time
	DateLabel string
	Date      time.Time
	Issuer    Party
	Client    Party
	Lines     []Line
	Totals    []Row
	Footer    string
}

const (
	pageWidth   = 210.0
	margin      = 15.0
	contentWide = pageWidth - 2*margin
	lineHeight  = 6.0
)

var columnWidths = [4]float64{100, 20, 30, 30}

// Renderer produces PDF documents with gofpdf
type Renderer struct{}

// NewRenderer creates a new PDF renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render lays out doc on A4 pages and returns the PDF bytes
func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(doc.Title+" "+doc.Number, true)
	pdf.AddPage()

	// core fonts are cp1252 encoded
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentWide/2, 10, tr(doc.Issuer.Name), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentWide/2, 10, tr(doc.Title), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	startY := pdf.GetY()
	writeParty(pdf, tr, doc.Issuer, margin)
	pdf.SetXY(margin+contentWide/2, startY)
	pdf.CellFormat(contentWide/2, lineHeight, tr("N° "+doc.Number), "", 2, "R", false, 0, "")
	pdf.CellFormat(contentWide/2, lineHeight, tr("Date : "+doc.IssuedAt.Format("02/01/2006")), "", 2, "R", false, 0, "")
	if doc.DateLabel != "" && !doc.Date.IsZero() {
		pdf.CellFormat(contentWide/2, lineHeight, tr(doc.DateLabel+" : "+doc.Date.Format("02/01/2006")), "", 2, "R", false, 0, "")
	}

	pdf.SetY(pdf.GetY() + 2*lineHeight)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentWide, lineHeight, tr("Client"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	writeParty(pdf, tr, doc.Client, margin)

	pdf.Ln(lineHeight)
	writeLines(pdf, tr, doc.Lines)

	pdf.Ln(lineHeight / 2)
	for _, row := range doc.Totals {
		style := ""
		if row.Bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.SetX(margin + columnWidths[0] + columnWidths[1])
		pdf.CellFormat(columnWidths[2], lineHeight, tr(row.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(columnWidths[3], lineHeight, tr(row.Value), "", 1, "R", false, 0, "")
	}

	if doc.Footer != "" {
		pdf.Ln(2 * lineHeight)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentWide, 5, tr(doc.Footer), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeParty(pdf *gofpdf.Fpdf, tr func(string) string, p Party, x float64) {
	for _, text := range []string{p.Company, p.Name, p.Address, p.Email, p.Phone} {
		if text == "" {
			continue
		}
		pdf.SetX(x)
		pdf.MultiCell(contentWide/2, 5, tr(text), "", "L", false)
	}
}

func writeLines(pdf *gofpdf.Fpdf, tr func(string) string, lines []Line) {
	headers := [4]string{"Description", "Qté", "Prix unit.", "Total"}
	aligns := [4]string{"L", "R", "R", "R"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(columnWidths[i], 8, tr(h), "1", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range lines {
		cells := [4]string{line.Description, line.Quantity, line.UnitPrice, line.Total}
		for i, c := range cells {
			pdf.CellFormat(columnWidths[i], 7, tr(c), "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
}
