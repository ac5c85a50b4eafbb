package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const ensureTalentsQuery = `INSERT INTO talents_ledger (student_id, talents) VALUES ($1, 0) ON CONFLICT (student_id) DO NOTHING`

// TalentRepository reads and lazily creates talents ledger rows.
type TalentRepository struct {
	db *sqlx.DB
}

// NewTalentRepository constructs a TalentRepository.
func NewTalentRepository(db *sqlx.DB) *TalentRepository {
	return &TalentRepository{db: db}
}

// Ensure creates a zero talents row for the student when none exists.
func (r *TalentRepository) Ensure(ctx context.Context, studentID int64) error {
	if _, err := r.db.ExecContext(ctx, ensureTalentsQuery, studentID); err != nil {
		return fmt.Errorf("ensure talents row: %w", err)
	}
	return nil
}

// Get returns the student's talents, or zero when no row exists yet.
func (r *TalentRepository) Get(ctx context.Context, studentID int64) (int64, error) {
	var talents int64
	err := r.db.GetContext(ctx, &talents, `SELECT talents FROM talents_ledger WHERE student_id = $1`, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get talents: %w", err)
	}
	return talents, nil
}
