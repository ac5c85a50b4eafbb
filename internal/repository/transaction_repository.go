package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/storehouse-api/internal/models"
)

const (
	insertTransactionQuery = `INSERT INTO transactions (student_id, type, reason, amount_shekels, created_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	balanceQuery = `SELECT COALESCE(SUM(amount_shekels), 0) FROM transactions WHERE student_id = $1`
)

// TransactionRepository is the append-only Shekels ledger.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository constructs a TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Record appends one ledger row and fills in its ID.
func (r *TransactionRepository) Record(ctx context.Context, txn *models.Transaction) error {
	if err := r.db.QueryRowxContext(ctx, insertTransactionQuery, txn.StudentID, txn.Type, txn.Reason, txn.AmountShekels, txn.CreatedAt).
		Scan(&txn.ID); err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}

// Balance returns the signed sum of the student's ledger rows.
func (r *TransactionRepository) Balance(ctx context.Context, studentID int64) (int64, error) {
	var balance int64
	if err := r.db.GetContext(ctx, &balance, balanceQuery, studentID); err != nil {
		return 0, fmt.Errorf("sum balance: %w", err)
	}
	return balance, nil
}

// History returns the most recent transactions of a student, newest first.
func (r *TransactionRepository) History(ctx context.Context, studentID int64, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT id, student_id, type, reason, amount_shekels, created_at FROM transactions
        WHERE student_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	var txns []models.Transaction
	if err := r.db.SelectContext(ctx, &txns, query, studentID, limit); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

// Report lists transactions joined with student names for exports.
func (r *TransactionRepository) Report(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionReportRow, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("t.student_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("t.type = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("t.created_at < $%d", len(args)))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 5000 {
		limit = 1000
	}
	query := fmt.Sprintf(`SELECT t.id, t.student_id, t.type, t.reason, t.amount_shekels, t.created_at, s.name AS student_name
        FROM transactions t JOIN students s ON s.id = t.student_id
        WHERE %s ORDER BY t.created_at DESC, t.id DESC LIMIT %d`, strings.Join(conditions, " AND "), limit)

	var rows []models.TransactionReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("report transactions: %w", err)
	}
	return rows, nil
}
