package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		qr_id TEXT NOT NULL UNIQUE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL REFERENCES students(id),
		type TEXT NOT NULL,
		reason TEXT,
		amount_shekels BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'standard',
		price_shekels BIGINT NOT NULL DEFAULT 0 CHECK (price_shekels >= 0),
		inventory BIGINT NOT NULL DEFAULT 0 CHECK (inventory >= 0),
		goal_amount BIGINT,
		buy_in_cost BIGINT,
		progress_amount BIGINT NOT NULL DEFAULT 0 CHECK (progress_amount >= 0),
		completed_at TIMESTAMPTZ,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT 'snack',
		rarity TEXT NOT NULL DEFAULT 'common',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS talents_ledger (
		student_id BIGINT PRIMARY KEY REFERENCES students(id),
		talents BIGINT NOT NULL DEFAULT 0 CHECK (talents >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_student ON transactions(student_id, created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_students_active ON students(active)`,
	`CREATE INDEX IF NOT EXISTS idx_items_active ON items(active)`,
	`INSERT INTO settings (key, value) VALUES
		('economy', '{"attendance_shekels":2,"participation_shekels":1,"memory_verse_shekels":3,"bonus_min":0,"bonus_max":3,"shekels_per_talent":25}'),
		('labels', '{"shekels_label":"Shekels","talents_label":"Talents"}')
		ON CONFLICT (key) DO NOTHING`,
}

// Migrate creates the storehouse tables when missing.
func Migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("running database migrations", zap.Int("statements", len(schema)))
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	logger.Info("database migrations completed")
	return nil
}
