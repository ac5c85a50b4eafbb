package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/storehouse-api/internal/models"
)

const itemColumns = `id, name, type, price_shekels, inventory, goal_amount, buy_in_cost, progress_amount,
        completed_at, active, sort_order, category, rarity, created_at`

// ItemRepository persists catalog items.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository constructs an ItemRepository.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// List returns every item ordered for the admin catalog.
func (r *ItemRepository) List(ctx context.Context) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items ORDER BY active DESC, sort_order ASC, LOWER(name) ASC`, itemColumns)
	var items []models.Item
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// ListAvailable returns active stocked items and active open group buys.
func (r *ItemRepository) ListAvailable(ctx context.Context) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items
        WHERE active = TRUE AND (
            (type = 'standard' AND inventory > 0)
            OR (type = 'group_buy' AND completed_at IS NULL AND progress_amount < COALESCE(goal_amount, 0))
        )
        ORDER BY sort_order ASC, LOWER(name) ASC`, itemColumns)
	var items []models.Item
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list available items: %w", err)
	}
	return items, nil
}

// FindByID fetches one item. It returns sql.ErrNoRows when missing.
func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE id = $1`, itemColumns)
	var item models.Item
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new item and fills in its ID and timestamps.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	const query = `INSERT INTO items (name, type, price_shekels, inventory, goal_amount, buy_in_cost, active, sort_order, category, rarity)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, item.Name, item.Type, item.PriceShekels, item.Inventory, item.GoalAmount,
		item.BuyInCost, item.Active, item.SortOrder, item.Category, item.Rarity).Scan(&item.ID, &item.CreatedAt); err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// Update replaces the editable fields of an item. Group-buy progress is never
// rewritten here so an edit cannot undo contributions.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	const query = `UPDATE items SET name = $1, type = $2, price_shekels = $3, inventory = $4, goal_amount = $5,
        buy_in_cost = $6, active = $7, sort_order = $8, category = $9, rarity = $10 WHERE id = $11`
	res, err := r.db.ExecContext(ctx, query, item.Name, item.Type, item.PriceShekels, item.Inventory, item.GoalAmount,
		item.BuyInCost, item.Active, item.SortOrder, item.Category, item.Rarity, item.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return expectAffected(res, "update item")
}

// Delete removes an item.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return expectAffected(res, "delete item")
}
