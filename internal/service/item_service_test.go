package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

type stubItemRepo struct {
	items     map[int64]models.Item
	available int
}

func newStubItemRepo(items ...models.Item) *stubItemRepo {
	repo := &stubItemRepo{items: map[int64]models.Item{}}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (s *stubItemRepo) List(ctx context.Context) ([]models.Item, error) {
	out := make([]models.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out, nil
}

func (s *stubItemRepo) ListAvailable(ctx context.Context) ([]models.Item, error) {
	s.available++
	out := []models.Item{}
	for _, item := range s.items {
		if item.Active {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubItemRepo) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (s *stubItemRepo) Create(ctx context.Context, item *models.Item) error {
	item.ID = int64(len(s.items) + 1)
	s.items[item.ID] = *item
	return nil
}

func (s *stubItemRepo) Update(ctx context.Context, item *models.Item) error {
	if _, ok := s.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[item.ID] = *item
	return nil
}

func (s *stubItemRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func TestItemServiceCreateStandardDefaults(t *testing.T) {
	svc := NewItemService(newStubItemRepo(), nil, nil, nil)

	item, err := svc.Create(context.Background(), dto.UpsertItemRequest{
		Name:         " Sticker Pack ",
		PriceShekels: 2,
		Inventory:    40,
		Rarity:       "shiny",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sticker Pack", item.Name)
	assert.Equal(t, models.ItemTypeStandard, item.Type)
	assert.Equal(t, models.RarityCommon, item.Rarity)
	assert.Equal(t, models.DefaultItemCategory, item.Category)
	assert.True(t, item.Active)
	assert.Nil(t, item.GoalAmount)
}

func TestItemServiceCreateGroupBuy(t *testing.T) {
	svc := NewItemService(newStubItemRepo(), nil, nil, nil)

	item, err := svc.Create(context.Background(), dto.UpsertItemRequest{
		Name:         "Pizza Party",
		Type:         "GROUP_BUY",
		PriceShekels: 9,
		GoalAmount:   int64Ptr(50),
		BuyInCost:    int64Ptr(5),
		Rarity:       "legendary",
	})
	require.NoError(t, err)
	assert.True(t, item.IsGroupBuy())
	assert.Equal(t, int64(50), item.Goal())
	assert.Equal(t, int64(5), item.BuyIn())
	assert.Zero(t, item.PriceShekels)
	assert.Equal(t, models.RarityLegendary, item.Rarity)

	_, err = svc.Create(context.Background(), dto.UpsertItemRequest{Name: "Broken", Type: "group_buy", GoalAmount: int64Ptr(50)})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestItemServiceCreateRejectsNegatives(t *testing.T) {
	svc := NewItemService(newStubItemRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.UpsertItemRequest{Name: "Gum", PriceShekels: -1})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	_, err = svc.Create(context.Background(), dto.UpsertItemRequest{Name: ""})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestItemServiceUpdateKeepsProgress(t *testing.T) {
	done := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	repo := newStubItemRepo(models.Item{
		ID:             4,
		Name:           "Pizza Party",
		Type:           models.ItemTypeGroupBuy,
		GoalAmount:     int64Ptr(50),
		BuyInCost:      int64Ptr(5),
		ProgressAmount: 50,
		CompletedAt:    &done,
	})
	svc := NewItemService(repo, nil, nil, nil)

	item, err := svc.Update(context.Background(), 4, dto.UpsertItemRequest{
		Name:       "Pizza Party XL",
		Type:       "group_buy",
		GoalAmount: int64Ptr(80),
		BuyInCost:  int64Ptr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), item.ID)
	assert.Equal(t, int64(50), item.ProgressAmount)
	assert.Equal(t, &done, item.CompletedAt)
	assert.Equal(t, int64(80), repo.items[4].Goal())

	_, err = svc.Update(context.Background(), 99, dto.UpsertItemRequest{Name: "Ghost"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestItemServiceDelete(t *testing.T) {
	repo := newStubItemRepo(models.Item{ID: 1, Name: "Gum"})
	svc := NewItemService(repo, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Empty(t, repo.items)
	assert.True(t, appErrors.Is(svc.Delete(context.Background(), 1), appErrors.ErrNotFound))
}

func TestItemServiceAvailableWithoutCache(t *testing.T) {
	repo := newStubItemRepo(models.Item{ID: 1, Active: true}, models.Item{ID: 2})
	svc := NewItemService(repo, nil, nil, nil)

	items, err := svc.Available(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	_, err = svc.Available(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.available)
}
