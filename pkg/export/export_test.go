package export

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Columns: []Column{
			{Key: "id", Title: "ID", Width: 15},
			{Key: "student", Title: "Student"},
			{Key: "amount", Title: "Amount", Align: "R"},
		},
		Rows: []map[string]string{
			{"id": "1", "student": "Avery Johnson", "amount": "2"},
			{"id": "2", "student": "Brooklyn, Carter", "amount": "-3"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Student,Amount", lines[0])
	assert.Equal(t, `2,"Brooklyn, Carter",-3`, lines[2])
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Transactions", "All students")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsShareRemainder(t *testing.T) {
	widths := columnWidths(sampleDataset().Columns, 115)
	assert.Equal(t, []float64{15, 50, 50}, widths)
}

func TestQRPNG(t *testing.T) {
	out, err := QRPNG("https://storehouse.local/s/abc", 300)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, bounds.Dx(), bounds.Dy())
	assert.LessOrEqual(t, bounds.Dx(), 300)

	_, err = QRPNG("", 300)
	require.Error(t, err)
}

func TestFormatCardName(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"Avery":                "Avery",
		"Avery Johnson":        "Avery J.",
		"  daisy  mae  patel ": "daisy P.",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatCardName(in), in)
	}
}

func TestCardSheetRender(t *testing.T) {
	cards := make([]Card, 0, 9)
	for i := 0; i < 9; i++ {
		cards = append(cards, Card{Name: "Bartholomew Maximilian Worthington", QRContent: "token"})
	}
	out, err := NewCardSheet("The Storehouse", "AOC YOUTH").Render(cards)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewCardSheet("The Storehouse", "").Render(nil)
	require.Error(t, err)
}
