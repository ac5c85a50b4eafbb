package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/pkg/response"
)

type ledgerService interface {
	Earn(ctx context.Context, studentID int64, category string) (*dto.EarnResult, error)
	BulkAward(ctx context.Context, req dto.BulkAwardRequest) (*dto.BulkAwardResult, error)
	Adjust(ctx context.Context, studentID int64, req dto.AdjustRequest) (*dto.EarnResult, error)
	Undo(ctx context.Context, studentID int64) (*dto.EarnResult, error)
}

// LedgerHandler exposes admin ledger corrections and awards.
type LedgerHandler struct {
	ledger ledgerService
}

// NewLedgerHandler constructs LedgerHandler.
func NewLedgerHandler(ledger ledgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Earn godoc
// @Summary Award an earn category to one student
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param payload body dto.EarnRequest true "Earn category"
// @Success 201 {object} response.Envelope
// @Router /admin/students/{id}/earn [post]
func (h *LedgerHandler) Earn(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.EarnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid earn payload"))
		return
	}
	result, err := h.ledger.Earn(c.Request.Context(), id, req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// BulkAward godoc
// @Summary Award one category to many students
// @Description All rows are written in one transaction; one inactive or unknown student aborts the batch.
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkAwardRequest true "Award payload"
// @Success 201 {object} response.Envelope
// @Router /admin/awards [post]
func (h *LedgerHandler) BulkAward(c *gin.Context) {
	var req dto.BulkAwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid award payload"))
		return
	}
	result, err := h.ledger.BulkAward(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Adjust godoc
// @Summary Apply a manual signed correction
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param payload body dto.AdjustRequest true "Adjustment"
// @Success 201 {object} response.Envelope
// @Router /admin/students/{id}/adjust [post]
func (h *LedgerHandler) Adjust(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "amount must be an integer"))
		return
	}
	result, err := h.ledger.Adjust(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Undo godoc
// @Summary Reverse the latest transaction
// @Description Appends an adjust row negating the most recent transaction.
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/students/{id}/undo [post]
func (h *LedgerHandler) Undo(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.ledger.Undo(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
