package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

type itemRepository interface {
	List(ctx context.Context) ([]models.Item, error)
	ListAvailable(ctx context.Context) ([]models.Item, error)
	FindByID(ctx context.Context, id int64) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id int64) error
}

// ItemService manages the catalog and its cached public listing.
type ItemService struct {
	repo      itemRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewItemService constructs an ItemService.
func NewItemService(repo itemRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ItemService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the whole catalog for admins.
func (s *ItemService) List(ctx context.Context) ([]models.Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list items")
	}
	return items, nil
}

// Available returns the items shown on the kiosk, served from cache when possible.
func (s *ItemService) Available(ctx context.Context) ([]models.Item, error) {
	var cached []models.Item
	if hit, _ := s.cache.Get(ctx, catalogAvailableKey, &cached); hit {
		return cached, nil
	}
	items, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list items")
	}
	_ = s.cache.Set(ctx, catalogAvailableKey, items, 0)
	return items, nil
}

// Get returns one item.
func (s *ItemService) Get(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "item not found", "failed to load item")
	}
	return item, nil
}

// Create adds an item to the catalog.
func (s *ItemService) Create(ctx context.Context, req dto.UpsertItemRequest) (*models.Item, error) {
	item, err := s.buildItem(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, internalError(err, "failed to create item")
	}
	s.cache.InvalidateCatalog(ctx)
	s.logger.Info("item created", zap.Int64("item_id", item.ID), zap.String("type", string(item.Type)))
	return item, nil
}

// Update replaces an item's editable fields.
func (s *ItemService) Update(ctx context.Context, id int64, req dto.UpsertItemRequest) (*models.Item, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "item not found", "failed to load item")
	}
	item, err := s.buildItem(req)
	if err != nil {
		return nil, err
	}
	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt
	item.ProgressAmount = existing.ProgressAmount
	item.CompletedAt = existing.CompletedAt
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, notFoundOr(err, "item not found", "failed to update item")
	}
	s.cache.InvalidateCatalog(ctx)
	return item, nil
}

// Delete removes an item from the catalog.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "item not found", "failed to delete item")
	}
	s.cache.InvalidateCatalog(ctx)
	return nil
}

func (s *ItemService) buildItem(req dto.UpsertItemRequest) (*models.Item, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid item payload")
	}
	item := &models.Item{
		Name:      req.Name,
		Type:      models.NormalizeItemType(req.Type),
		Active:    true,
		SortOrder: req.SortOrder,
		Category:  strings.TrimSpace(req.Category),
		Rarity:    models.NormalizeRarity(req.Rarity),
	}
	if item.Category == "" {
		item.Category = models.DefaultItemCategory
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	if item.IsGroupBuy() {
		if req.GoalAmount == nil || *req.GoalAmount <= 0 || req.BuyInCost == nil || *req.BuyInCost <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "group buys need a positive goal and buy-in")
		}
		goal, buyIn := *req.GoalAmount, *req.BuyInCost
		item.GoalAmount = &goal
		item.BuyInCost = &buyIn
		return item, nil
	}

	item.PriceShekels = req.PriceShekels
	item.Inventory = req.Inventory
	return item, nil
}
