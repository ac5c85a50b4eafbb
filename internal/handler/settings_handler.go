package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	"github.com/noah-isme/storehouse-api/pkg/response"
)

type settingsService interface {
	View(ctx context.Context) (*dto.SettingsView, error)
	Labels(ctx context.Context) (models.CurrencyLabels, error)
	UpdateEconomy(ctx context.Context, economy models.EconomySettings) (*models.EconomySettings, error)
	UpdateLabels(ctx context.Context, labels models.CurrencyLabels) (*models.CurrencyLabels, error)
}

// SettingsHandler exposes the economy and currency label records.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler builds a new handler.
func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get godoc
// @Summary Current economy and labels
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	view, err := h.service.View(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Labels godoc
// @Summary Currency labels for the kiosk
// @Tags Kiosk
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /kiosk/labels [get]
func (h *SettingsHandler) Labels(c *gin.Context) {
	labels, err := h.service.Labels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, labels, nil)
}

// UpdateEconomy godoc
// @Summary Replace the economy settings
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.EconomySettings true "Economy"
// @Success 200 {object} response.Envelope
// @Router /admin/settings/economy [put]
func (h *SettingsHandler) UpdateEconomy(c *gin.Context) {
	var req models.EconomySettings
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid economy payload"))
		return
	}
	economy, err := h.service.UpdateEconomy(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, economy, nil)
}

// UpdateLabels godoc
// @Summary Rename the currencies
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CurrencyLabels true "Labels"
// @Success 200 {object} response.Envelope
// @Router /admin/settings/labels [put]
func (h *SettingsHandler) UpdateLabels(c *gin.Context) {
	var req models.CurrencyLabels
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid labels payload"))
		return
	}
	labels, err := h.service.UpdateLabels(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, labels, nil)
}
