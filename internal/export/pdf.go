package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/licitaciones-portal/internal/view"
)

// PDFGenerator prints a one-page tender sheet with the core Helvetica font;
// text is translated to cp1252, which covers Spanish.
type PDFGenerator struct {
	fontName string
}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{fontName: "Helvetica"}
}

func (g *PDFGenerator) Generate(d view.Detail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(d.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.MultiCell(0, 7, tr(safeValue(d.Title)), "", "L", false)
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("ID: %s  |  Estado: %s", safeValue(d.ID), safeValue(d.Status))), "", 1, "L", false, 0, "")
	if d.DaysUntilClose != nil {
		r, gr, b := urgencyColor(d.Urgency)
		pdf.SetTextColor(r, gr, b)
		pdf.CellFormat(0, 6, tr(view.ClosingLabel(d.DaysUntilClose)), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(3)

	section(pdf, g.fontName, tr("Información general"))
	widths := []float64{55, 125}
	facts := [][]string{
		{"Responsable", d.Responsible},
		{"Organismo", d.Organism},
		{"Región", d.Region},
		{"Monto", d.Amount},
		{"Fecha Publicación", d.Published},
		{"Fecha Cierre", d.Closes},
		{"Fecha Adjudicación", d.Awarded},
	}
	for _, f := range facts {
		drawTableRow(pdf, g.fontName, []string{tr(f[0]), tr(safeValue(f[1]))}, widths, false)
	}

	if strings.TrimSpace(d.Description) != "" {
		pdf.Ln(3)
		section(pdf, g.fontName, tr("Descripción"))
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, tr(d.Description), "", "L", false)
	}

	if d.HasExtraDates() {
		pdf.Ln(3)
		section(pdf, g.fontName, tr("Fechas del proceso"))
		for _, e := range d.ExtraDates {
			drawTableRow(pdf, g.fontName, []string{tr(e.Label), tr(safeValue(e.Value))}, widths, false)
		}
	}

	if d.HasCriteria() {
		pdf.Ln(3)
		section(pdf, g.fontName, tr("Criterios de evaluación"))
		cols := []float64{140, 40}
		drawTableRow(pdf, g.fontName, []string{tr("Ítem"), tr("Ponderación")}, cols, true)
		for _, c := range d.Criteria {
			drawTableRow(pdf, g.fontName, []string{tr(safeValue(c.Item)), tr(safeValue(c.Weighting))}, cols, false)
		}
	}

	if len(d.Links) > 0 {
		pdf.Ln(3)
		section(pdf, g.fontName, "Enlaces")
		pdf.SetFont(g.fontName, "", 9)
		for _, l := range d.Links {
			pdf.SetTextColor(29, 78, 216)
			pdf.CellFormat(0, 5, tr(l.Label), "", 1, "L", false, 0, l.URL)
			pdf.SetTextColor(0, 0, 0)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, fontName, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 && len(cols) > 2 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
}

func urgencyColor(urgency string) (int, int, int) {
	switch urgency {
	case "danger":
		return 200, 0, 0
	case "warning":
		return 180, 120, 0
	default:
		return 0, 128, 0
	}
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return view.NotAvailable
	}
	return value
}
