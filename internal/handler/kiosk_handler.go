package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	"github.com/noah-isme/storehouse-api/pkg/response"
)

type kioskService interface {
	Roster(ctx context.Context, search string) ([]models.StudentSummary, error)
	Resolve(ctx context.Context, qrID string) (*models.StudentSummary, error)
	Page(ctx context.Context, qrID string) (*dto.KioskStudentPage, error)
}

type earnService interface {
	Earn(ctx context.Context, studentID int64, category string) (*dto.EarnResult, error)
}

type purchaseService interface {
	Purchase(ctx context.Context, studentID, itemID int64) (*dto.PurchaseResult, error)
}

type groupBuyService interface {
	Contribute(ctx context.Context, studentID, itemID int64) (*dto.GroupBuyResult, error)
}

type conversionService interface {
	Convert(ctx context.Context, studentID int64) (*dto.ConversionResult, error)
}

type availableItems interface {
	Available(ctx context.Context) ([]models.Item, error)
}

// KioskHandler serves the student-facing scan flow. Every operation addresses
// the student by scan token, never by id.
type KioskHandler struct {
	kiosk      kioskService
	ledger     earnService
	purchases  purchaseService
	groupBuys  groupBuyService
	conversion conversionService
	items      availableItems
}

// NewKioskHandler constructs a KioskHandler.
func NewKioskHandler(kiosk kioskService, ledger earnService, purchases purchaseService, groupBuys groupBuyService, conversion conversionService, items availableItems) *KioskHandler {
	return &KioskHandler{
		kiosk:      kiosk,
		ledger:     ledger,
		purchases:  purchases,
		groupBuys:  groupBuys,
		conversion: conversion,
		items:      items,
	}
}

// Roster godoc
// @Summary List active students for manual lookup
// @Tags Kiosk
// @Produce json
// @Param search query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Router /kiosk/students [get]
func (h *KioskHandler) Roster(c *gin.Context) {
	students, err := h.kiosk.Roster(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Items godoc
// @Summary List items on sale
// @Tags Kiosk
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /kiosk/items [get]
func (h *KioskHandler) Items(c *gin.Context) {
	items, err := h.items.Available(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Page godoc
// @Summary Student page after a scan
// @Tags Kiosk
// @Produce json
// @Param qr_id path string true "Scan token"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /kiosk/s/{qr_id} [get]
func (h *KioskHandler) Page(c *gin.Context) {
	page, err := h.kiosk.Page(c.Request.Context(), c.Param("qr_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Earn godoc
// @Summary Award an earn category
// @Tags Kiosk
// @Accept json
// @Produce json
// @Param qr_id path string true "Scan token"
// @Param payload body dto.EarnRequest true "Earn category"
// @Success 201 {object} response.Envelope
// @Router /kiosk/s/{qr_id}/earn [post]
func (h *KioskHandler) Earn(c *gin.Context) {
	var req dto.EarnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid earn payload"))
		return
	}
	student, err := h.kiosk.Resolve(c.Request.Context(), c.Param("qr_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.ledger.Earn(c.Request.Context(), student.ID, req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Buy godoc
// @Summary Buy one unit of a standard item
// @Tags Kiosk
// @Accept json
// @Produce json
// @Param qr_id path string true "Scan token"
// @Param payload body dto.BuyRequest true "Item"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /kiosk/s/{qr_id}/buy [post]
func (h *KioskHandler) Buy(c *gin.Context) {
	var req dto.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid purchase payload"))
		return
	}
	student, err := h.kiosk.Resolve(c.Request.Context(), c.Param("qr_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.purchases.Purchase(c.Request.Context(), student.ID, req.ItemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GroupBuy godoc
// @Summary Contribute to a group buy
// @Tags Kiosk
// @Accept json
// @Produce json
// @Param qr_id path string true "Scan token"
// @Param payload body dto.BuyRequest true "Item"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /kiosk/s/{qr_id}/group-buy [post]
func (h *KioskHandler) GroupBuy(c *gin.Context) {
	var req dto.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid group buy payload"))
		return
	}
	student, err := h.kiosk.Resolve(c.Request.Context(), c.Param("qr_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.groupBuys.Contribute(c.Request.Context(), student.ID, req.ItemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Convert godoc
// @Summary Convert Shekels to one Talent
// @Tags Kiosk
// @Produce json
// @Param qr_id path string true "Scan token"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /kiosk/s/{qr_id}/convert [post]
func (h *KioskHandler) Convert(c *gin.Context) {
	student, err := h.kiosk.Resolve(c.Request.Context(), c.Param("qr_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.conversion.Convert(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
