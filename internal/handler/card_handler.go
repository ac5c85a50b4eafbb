package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
	"github.com/noah-isme/storehouse-api/pkg/response"
)

type cardService interface {
	QRCode(requestBase, qrID string, full bool) ([]byte, error)
	Cards(ctx context.Context, requestBase string, ids []int64) ([]byte, error)
}

// CardHandler serves scan codes and printable ID cards.
type CardHandler struct {
	cards cardService
}

// NewCardHandler constructs CardHandler.
func NewCardHandler(cards cardService) *CardHandler {
	return &CardHandler{cards: cards}
}

// QRCode godoc
// @Summary QR code for a scan token
// @Description Encodes the kiosk link, or only the token when full=0. download=1 sends it as an attachment.
// @Tags Cards
// @Produce png
// @Param file path string true "Scan token followed by .png"
// @Param full query int false "0 encodes only the token"
// @Param download query int false "1 sets an attachment disposition"
// @Success 200 {file} binary
// @Router /qr/{file} [get]
func (h *CardHandler) QRCode(c *gin.Context) {
	qrID := strings.TrimSuffix(c.Param("file"), ".png")
	if qrID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "scan token not found"))
		return
	}
	png, err := h.cards.QRCode(requestBase(c), qrID, c.Query("full") != "0")
	if err != nil {
		response.Error(c, err)
		return
	}
	if c.Query("download") == "1" {
		response.Attachment(c, "image/png", qrID+".png", png)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// Cards godoc
// @Summary Printable ID cards
// @Description CR80 cards on Letter pages for the listed students, or every active student when ids is empty.
// @Tags Cards
// @Produce application/pdf
// @Security BearerAuth
// @Param ids query string false "Comma separated student ids"
// @Success 200 {file} binary
// @Router /admin/cards.pdf [get]
func (h *CardHandler) Cards(c *gin.Context) {
	ids, err := idsQuery(c, "ids")
	if err != nil {
		response.Error(c, err)
		return
	}
	pdf, err := h.cards.Cards(c.Request.Context(), requestBase(c), ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "application/pdf", "storehouse-cards.pdf", pdf)
}
