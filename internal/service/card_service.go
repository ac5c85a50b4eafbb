package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
	"github.com/noah-isme/storehouse-api/pkg/export"
)

const kioskQRPixels = 300

type cardStudentLister interface {
	ListByIDs(ctx context.Context, ids []int64) ([]models.Student, error)
}

// CardService renders scan codes and printable ID cards.
type CardService struct {
	students cardStudentLister
	sheet    *export.CardSheet
	baseURL  string
	logger   *zap.Logger
}

// NewCardService constructs a CardService. baseURL, when set, overrides the
// request host in encoded kiosk links.
func NewCardService(students cardStudentLister, sheet *export.CardSheet, baseURL string, logger *zap.Logger) *CardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CardService{students: students, sheet: sheet, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// KioskURL returns the link a scan opens for the given token.
func (s *CardService) KioskURL(requestBase, qrID string) string {
	base := s.baseURL
	if base == "" {
		base = strings.TrimRight(requestBase, "/")
	}
	return base + "/s/" + qrID
}

// QRCode renders the PNG for a scan token, encoding the kiosk URL or, when
// full is false, the bare token.
func (s *CardService) QRCode(requestBase, qrID string, full bool) ([]byte, error) {
	qrID = strings.TrimSpace(qrID)
	if qrID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scan token is required")
	}
	content := qrID
	if full {
		content = s.KioskURL(requestBase, qrID)
	}
	png, err := export.QRPNG(content, kioskQRPixels)
	if err != nil {
		return nil, internalError(err, "failed to render QR code")
	}
	return png, nil
}

// Cards renders ID cards for the given students, or every active student
// when ids is empty.
func (s *CardService) Cards(ctx context.Context, requestBase string, ids []int64) ([]byte, error) {
	students, err := s.students.ListByIDs(ctx, ids)
	if err != nil {
		return nil, passThrough(err, "failed to list students")
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no students selected")
	}
	cards := make([]export.Card, 0, len(students))
	for _, student := range students {
		cards = append(cards, export.Card{Name: student.Name, QRContent: s.KioskURL(requestBase, student.QRID)})
	}
	pdf, err := s.sheet.Render(cards)
	if err != nil {
		return nil, internalError(err, "failed to render cards")
	}
	s.logger.Info("id cards rendered", zap.Int("count", len(cards)))
	return pdf, nil
}
