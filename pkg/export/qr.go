package export

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// qrQuietZone is the white border in modules around every code.
const qrQuietZone = 4

// QRPNG encodes content as a medium error-correction QR code and returns a
// square PNG of roughly size pixels including the quiet zone.
func QRPNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	dim := code.Bounds().Dx()
	modules := dim + 2*qrQuietZone
	px := size / modules
	if px < 1 {
		px = 1
	}
	scaled, err := barcode.Scale(code, dim*px, dim*px)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}

	side := modules * px
	canvas := image.NewGray(image.Rect(0, 0, side, side))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	offset := qrQuietZone * px
	draw.Draw(canvas, image.Rect(offset, offset, offset+dim*px, offset+dim*px), scaled, image.Point{}, draw.Src)

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
