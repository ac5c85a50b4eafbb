package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/storehouse-api/internal/models"
)

const upsertSettingQuery = `INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

// SettingRepository persists JSON settings records keyed by name.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository constructs the repository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// List returns every settings row ordered by key.
func (r *SettingRepository) List(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.db.SelectContext(ctx, &settings, `SELECT key, value FROM settings ORDER BY key ASC`); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Get fetches a single setting by key. It returns sql.ErrNoRows when missing.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, `SELECT key, value FROM settings WHERE key = $1`, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert inserts or replaces a setting.
func (r *SettingRepository) Upsert(ctx context.Context, setting models.Setting) error {
	if _, err := r.db.ExecContext(ctx, upsertSettingQuery, setting.Key, setting.Value); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

// BulkUpsert writes several settings within one transaction.
func (r *SettingRepository) BulkUpsert(ctx context.Context, settings []models.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk settings tx: %w", err)
	}
	for _, setting := range settings {
		if _, err := tx.ExecContext(ctx, upsertSettingQuery, setting.Key, setting.Value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk upsert setting: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk settings tx: %w", err)
	}
	return nil
}
