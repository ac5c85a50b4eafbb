package export

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
)

// CR80 card layout on Letter paper, in millimetres unless noted.
const (
	cardWidth        = 85.6
	cardHeight       = 53.98
	cardMargin       = 12.7
	cardGap          = 6.0
	cardPadding      = 5.0
	cardHeaderHeight = 9.0
	cardHeaderPad    = 3.5
	cardHeaderPt     = 9.5
	cardInnerInset   = 1.0
	cardQRSize       = 40.0
	cardQRPixels     = 472 // 40 mm at 300 dpi
	cardTextGap      = 5.0
	cardRightInset   = 5.0
	cardLabelPt      = 7.5
	cardLabelGap     = 1.5
	cardNameMaxPt    = 16.0
	cardNameMinPt    = 12.0
	ptToMM           = 25.4 / 72
)

// Card is one printable student ID card.
type Card struct {
	Name      string
	QRContent string
}

// CardSheet renders CR80 ID cards onto Letter pages.
type CardSheet struct {
	Title string
	Label string
}

// NewCardSheet constructs a CardSheet with the given header title and label.
func NewCardSheet(title, label string) *CardSheet {
	return &CardSheet{Title: title, Label: label}
}

// FormatCardName shortens "First Middle Last" to "First L.".
func FormatCardName(raw string) string {
	parts := strings.Fields(raw)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	last := []rune(parts[len(parts)-1])
	return fmt.Sprintf("%s %c.", parts[0], unicode.ToUpper(last[0]))
}

// Render lays the cards out in a grid, as many per page as fit.
func (c *CardSheet) Render(cards []Card) ([]byte, error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("no cards to render")
	}
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(cardMargin, cardMargin, cardMargin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, pageHeight := pdf.GetPageSize()
	cols := gridCount(pageWidth-2*cardMargin, cardWidth)
	rows := gridCount(pageHeight-2*cardMargin, cardHeight)
	capacity := cols * rows

	for i, card := range cards {
		if i%capacity == 0 {
			pdf.AddPage()
		}
		slot := i % capacity
		x := cardMargin + float64(slot%cols)*(cardWidth+cardGap)
		y := cardMargin + float64(slot/cols)*(cardHeight+cardGap)
		if err := c.drawCard(pdf, tr, fmt.Sprintf("qr-%d", i), card, x, y); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render cards pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *CardSheet) drawCard(pdf *gofpdf.Fpdf, tr func(string) string, imageName string, card Card, x, y float64) error {
	pdf.SetLineWidth(0.75 * ptToMM)
	pdf.SetDrawColor(209, 209, 209)
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(x, y, cardWidth, cardHeaderHeight, "F")
	pdf.Rect(x, y, cardWidth, cardHeight, "D")
	pdf.SetLineWidth(0.5 * ptToMM)
	pdf.SetDrawColor(230, 230, 230)
	pdf.Rect(x+cardInnerInset, y+cardInnerInset, cardWidth-2*cardInnerInset, cardHeight-2*cardInnerInset, "D")

	pdf.SetTextColor(26, 26, 26)
	pdf.SetFont("Helvetica", "B", cardHeaderPt)
	pdf.Text(x+cardHeaderPad, y+(cardHeaderHeight+cardHeaderPt*ptToMM)/2-0.5, tr(c.Title))

	png, err := QRPNG(card.QRContent, cardQRPixels)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(png))
	contentTop := y + cardHeaderHeight
	contentBottom := y + cardHeight - cardPadding
	qrX := x + cardPadding
	qrY := (contentTop+contentBottom)/2 - cardQRSize/2
	pdf.ImageOptions(imageName, qrX, qrY, cardQRSize, cardQRSize, false, opts, 0, "")

	textLeft := qrX + cardQRSize + cardTextGap
	maxWidth := x + cardWidth - cardRightInset - textLeft
	if maxWidth < 10 {
		maxWidth = 10
	}
	name, namePt := fitName(pdf, tr, FormatCardName(card.Name), maxWidth)

	labelBlock := 0.0
	if c.Label != "" {
		labelBlock = cardLabelPt*ptToMM + cardLabelGap
	}
	blockHeight := labelBlock + namePt*ptToMM
	cursor := contentTop + (contentBottom-contentTop-blockHeight)/2
	if c.Label != "" {
		cursor += cardLabelPt * ptToMM
		pdf.SetFont("Helvetica", "", cardLabelPt)
		pdf.SetTextColor(128, 128, 128)
		pdf.Text(textLeft, cursor, tr(c.Label))
		cursor += cardLabelGap
	}
	cursor += namePt * ptToMM
	pdf.SetFont("Helvetica", "B", namePt)
	pdf.SetTextColor(26, 26, 26)
	pdf.Text(textLeft, cursor, name)
	return pdf.Error()
}

// fitName shrinks the font from the maximum toward the minimum size and then
// ellipsises until the name fits maxWidth.
func fitName(pdf *gofpdf.Fpdf, tr func(string) string, name string, maxWidth float64) (string, float64) {
	for size := cardNameMaxPt; size >= cardNameMinPt; size -= 0.5 {
		pdf.SetFont("Helvetica", "B", size)
		if pdf.GetStringWidth(tr(name)) <= maxWidth {
			return tr(name), size
		}
	}
	pdf.SetFont("Helvetica", "B", cardNameMinPt)
	return fitText(pdf, tr, name, maxWidth), cardNameMinPt
}

func gridCount(available, cell float64) int {
	n := int((available + cardGap) / (cell + cardGap))
	if n < 1 {
		return 1
	}
	return n
}
