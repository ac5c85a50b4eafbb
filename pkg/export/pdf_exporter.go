package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	reportMargin     = 12.7
	reportHeaderRow  = 8.0
	reportBodyRow    = 6.5
	reportPageFormat = "Letter"
)

// PDFExporter renders datasets into a paginated table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a landscape Letter document. The title and the column
// header row repeat on every page and long cells are ellipsised to fit.
func (e *PDFExporter) Render(data Dataset, title, subtitle string) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	pdf := gofpdf.New("L", "mm", reportPageFormat, "")
	pdf.SetMargins(reportMargin, reportMargin, reportMargin)
	pdf.SetAutoPageBreak(true, reportMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	widths := columnWidths(data.Columns, pageWidth-2*reportMargin)
	titles := data.titles()

	pdf.SetHeaderFunc(func() {
		if title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
		}
		if subtitle != "" {
			pdf.SetFont("Arial", "", 9)
			pdf.CellFormat(0, 5, tr(subtitle), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, t := range titles {
			pdf.CellFormat(widths[i], reportHeaderRow, tr(t), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for i, col := range data.Columns {
			value := fitText(pdf, tr, row[col.Key], widths[i]-2)
			pdf.CellFormat(widths[i], reportBodyRow, value, "1", 0, col.Align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(cols []Column, available float64) []float64 {
	widths := make([]float64, len(cols))
	fixed, flexible := 0.0, 0
	for i, col := range cols {
		if col.Width > 0 {
			widths[i] = col.Width
			fixed += col.Width
		} else {
			flexible++
		}
	}
	if flexible > 0 {
		share := (available - fixed) / float64(flexible)
		if share < 10 {
			share = 10
		}
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

// fitText trims text with a trailing "..." until it fits width at the
// current font and returns it translated for the core fonts.
func fitText(pdf *gofpdf.Fpdf, tr func(string) string, text string, width float64) string {
	if pdf.GetStringWidth(tr(text)) <= width {
		return tr(text)
	}
	const ellipsis = "..."
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := tr(string(runes) + ellipsis)
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ellipsis
}
