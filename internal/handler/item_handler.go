package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	"github.com/noah-isme/storehouse-api/pkg/response"
)

type itemService interface {
	List(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id int64) (*models.Item, error)
	Create(ctx context.Context, req dto.UpsertItemRequest) (*models.Item, error)
	Update(ctx context.Context, id int64, req dto.UpsertItemRequest) (*models.Item, error)
	Delete(ctx context.Context, id int64) error
}

// ItemHandler exposes catalog management.
type ItemHandler struct {
	items itemService
}

// NewItemHandler constructs ItemHandler.
func NewItemHandler(items itemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// List godoc
// @Summary List all items
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/items [get]
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.items.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get item
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} response.Envelope
// @Router /admin/items/{id} [get]
func (h *ItemHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create item
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpsertItemRequest true "Item payload"
// @Success 201 {object} response.Envelope
// @Router /admin/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.UpsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid item payload"))
		return
	}
	item, err := h.items.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update item
// @Description Group-buy progress and completion are never changed here.
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param payload body dto.UpsertItemRequest true "Item payload"
// @Success 200 {object} response.Envelope
// @Router /admin/items/{id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid item payload"))
		return
	}
	item, err := h.items.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete item
// @Tags Items
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 204
// @Router /admin/items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.items.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
