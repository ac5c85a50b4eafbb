package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/storehouse-api/internal/models"
)

// serialTables lists the tables whose BIGSERIAL sequence follows imported ids.
var serialTables = []string{"students", "items", "transactions"}

// TransferRepository reads and replaces the whole data set.
type TransferRepository struct {
	db *sqlx.DB
}

// NewTransferRepository constructs a TransferRepository.
func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// Snapshot reads every table from one consistent read-only view.
func (r *TransferRepository) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	snap := &models.Snapshot{}
	if err := tx.SelectContext(ctx, &snap.Students, `SELECT id, name, qr_id, active, notes, created_at FROM students ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("snapshot students: %w", err)
	}
	if err := tx.SelectContext(ctx, &snap.Items, `SELECT `+itemColumns+` FROM items ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("snapshot items: %w", err)
	}
	if err := tx.SelectContext(ctx, &snap.Transactions, `SELECT id, student_id, type, reason, amount_shekels, created_at FROM transactions ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("snapshot transactions: %w", err)
	}
	if err := tx.SelectContext(ctx, &snap.Talents, `SELECT student_id, talents FROM talents_ledger ORDER BY student_id ASC`); err != nil {
		return nil, fmt.Errorf("snapshot talents: %w", err)
	}
	if err := tx.SelectContext(ctx, &snap.Settings, `SELECT key, value FROM settings ORDER BY key ASC`); err != nil {
		return nil, fmt.Errorf("snapshot settings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot tx: %w", err)
	}
	return snap, nil
}

// Replace deletes the current data and writes the snapshot with its original
// ids in one transaction. Settings are only replaced when the snapshot says so.
func (r *TransferRepository) Replace(ctx context.Context, snap *models.Snapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	if err := replaceTx(ctx, tx, snap); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}
	return nil
}

// Clear removes every student, item and ledger row and resets the sequences.
func (r *TransferRepository) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear tx: %w", err)
	}
	if err := deleteAll(ctx, tx, false); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, table := range serialTables {
		stmt := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), 1, false)`, table)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear tx: %w", err)
	}
	return nil
}

func replaceTx(ctx context.Context, tx *sqlx.Tx, snap *models.Snapshot) error {
	if err := deleteAll(ctx, tx, snap.ReplaceSettings); err != nil {
		return err
	}

	for _, s := range snap.Students {
		if _, err := tx.ExecContext(ctx, `INSERT INTO students (id, name, qr_id, active, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, s.Name, s.QRID, s.Active, s.Notes, s.CreatedAt); err != nil {
			return fmt.Errorf("import student %d: %w", s.ID, err)
		}
	}
	for _, it := range snap.Items {
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (id, name, type, price_shekels, inventory, goal_amount, buy_in_cost,
            progress_amount, completed_at, active, sort_order, category, rarity, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			it.ID, it.Name, it.Type, it.PriceShekels, it.Inventory, it.GoalAmount, it.BuyInCost,
			it.ProgressAmount, it.CompletedAt, it.Active, it.SortOrder, it.Category, it.Rarity, it.CreatedAt); err != nil {
			return fmt.Errorf("import item %d: %w", it.ID, err)
		}
	}
	for _, t := range snap.Transactions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO transactions (id, student_id, type, reason, amount_shekels, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, t.StudentID, t.Type, t.Reason, t.AmountShekels, t.CreatedAt); err != nil {
			return fmt.Errorf("import transaction %d: %w", t.ID, err)
		}
	}
	for _, l := range snap.Talents {
		if _, err := tx.ExecContext(ctx, `INSERT INTO talents_ledger (student_id, talents) VALUES ($1, $2)`, l.StudentID, l.Talents); err != nil {
			return fmt.Errorf("import talents for student %d: %w", l.StudentID, err)
		}
	}
	if snap.ReplaceSettings {
		for _, s := range snap.Settings {
			if _, err := tx.ExecContext(ctx, upsertSettingQuery, s.Key, s.Value); err != nil {
				return fmt.Errorf("import setting %s: %w", s.Key, err)
			}
		}
	}

	for _, table := range serialTables {
		stmt := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`, table)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("resync %s sequence: %w", table, err)
		}
	}
	return nil
}

func deleteAll(ctx context.Context, tx *sqlx.Tx, settings bool) error {
	stmts := []string{
		`DELETE FROM transactions`,
		`DELETE FROM talents_ledger`,
		`DELETE FROM students`,
		`DELETE FROM items`,
	}
	if settings {
		stmts = append(stmts, `DELETE FROM settings`)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}
