package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	"github.com/noah-isme/storehouse-api/internal/service"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
	"github.com/noah-isme/storehouse-api/pkg/response"
)

// maxImportBytes caps the import body.
const maxImportBytes = 32 << 20

type transferService interface {
	Export(ctx context.Context) (*models.ExportPayload, error)
	Import(ctx context.Context, payload *models.ImportPayload) (*dto.ImportResult, error)
}

// TransferHandler exposes whole-database export and import.
type TransferHandler struct {
	service transferService
}

// NewTransferHandler constructs TransferHandler.
func NewTransferHandler(service transferService) *TransferHandler {
	return &TransferHandler{service: service}
}

// Export godoc
// @Summary Download a full data export
// @Tags Data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ExportPayload
// @Router /admin/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	payload, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode export"))
		return
	}
	filename := "storehouse-export-" + payload.ExportedAt.UTC().Format("20060102-150405") + ".json"
	response.Attachment(c, "application/json", filename, body)
}

// Import godoc
// @Summary Replace all data with an export document
// @Description Validates the whole document, then replaces every table in one transaction. Settings are kept unless the document has a settings array.
// @Tags Data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ExportPayload true "Export document"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admin/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		response.Error(c, bindError(err, "import payload too large or unreadable"))
		return
	}
	payload, err := service.DecodeImport(raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	result, err := h.service.Import(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"processing_time_ms": time.Since(start).Milliseconds()})
}
