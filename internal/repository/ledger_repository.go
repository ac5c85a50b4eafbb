package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

// Reasons written by the ledger engines.
const (
	ReasonConverted   = "Converted to Talent"
	ReasonTalentAdded = "Talent +1"
	undoPrefix        = "Undo: "
	undoFallback      = "Transaction"
)

// PurchaseOutcome reports the state after a successful purchase.
type PurchaseOutcome struct {
	Item        models.Item
	Transaction models.Transaction
	Balance     int64
}

// GroupBuyOutcome reports the state after a successful contribution.
type GroupBuyOutcome struct {
	Item           models.Item
	Transaction    models.Transaction
	ProgressAmount int64
	Complete       bool
	Balance        int64
}

// ConversionOutcome reports balances after a conversion.
type ConversionOutcome struct {
	Talents int64
	Balance int64
}

// LedgerRepository runs the multi-step ledger mutations. Every operation runs
// in one database transaction that locks the student row first, so two
// mutations for the same student serialise and balance checks never read a
// stale sum.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs a LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Purchase buys one unit of a standard item for the student.
func (r *LedgerRepository) Purchase(ctx context.Context, studentID, itemID int64, at time.Time) (*PurchaseOutcome, error) {
	var out PurchaseOutcome
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := lockStudent(ctx, tx, studentID); err != nil {
			return err
		}

		const itemQuery = `SELECT ` + itemColumns + ` FROM items
            WHERE id = $1 AND active = TRUE AND type = 'standard' FOR UPDATE`
		if err := tx.GetContext(ctx, &out.Item, itemQuery, itemID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrItemNotAvailable
			}
			return fmt.Errorf("lock item: %w", err)
		}
		if out.Item.Inventory <= 0 {
			return appErrors.ErrOutOfStock
		}

		balance, err := balanceTx(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if balance < out.Item.PriceShekels {
			return appErrors.ErrInsufficientFunds
		}

		res, err := tx.ExecContext(ctx, `UPDATE items SET inventory = inventory - 1 WHERE id = $1 AND inventory > 0`, itemID)
		if err != nil {
			return fmt.Errorf("decrement inventory: %w", err)
		}
		if err := expectAffected(res, "decrement inventory"); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrOutOfStock
			}
			return err
		}
		out.Item.Inventory--

		reason := out.Item.Name
		out.Transaction = models.Transaction{
			StudentID:     studentID,
			Type:          models.TransactionSpend,
			Reason:        &reason,
			AmountShekels: -out.Item.PriceShekels,
			CreatedAt:     at,
		}
		if err := recordTx(ctx, tx, &out.Transaction); err != nil {
			return err
		}
		out.Balance = balance - out.Item.PriceShekels
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ContributeGroupBuy adds the student's buy-in to a group buy.
func (r *LedgerRepository) ContributeGroupBuy(ctx context.Context, studentID, itemID int64, at time.Time) (*GroupBuyOutcome, error) {
	var out GroupBuyOutcome
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := lockStudent(ctx, tx, studentID); err != nil {
			return err
		}

		const itemQuery = `SELECT ` + itemColumns + ` FROM items WHERE id = $1 AND active = TRUE`
		if err := tx.GetContext(ctx, &out.Item, itemQuery, itemID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrItemNotAvailable
			}
			return fmt.Errorf("load group buy: %w", err)
		}
		item := out.Item
		if !item.IsGroupBuy() {
			return appErrors.ErrNotGroupBuy
		}
		if !item.GroupBuyConfigured() {
			return appErrors.ErrGroupBuyNotConfigured
		}
		if item.GroupBuyComplete() {
			return appErrors.ErrGroupBuyComplete
		}

		buyIn := item.BuyIn()
		balance, err := balanceTx(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if balance < buyIn {
			return appErrors.ErrInsufficientFunds
		}

		const progressQuery = `UPDATE items
            SET progress_amount = progress_amount + $1,
                completed_at = CASE
                    WHEN progress_amount + $1 >= goal_amount AND completed_at IS NULL THEN $2
                    ELSE completed_at
                END
            WHERE id = $3 AND active = TRUE AND type = 'group_buy'
              AND progress_amount < goal_amount AND completed_at IS NULL
            RETURNING progress_amount`
		if err := tx.GetContext(ctx, &out.ProgressAmount, progressQuery, buyIn, at, itemID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrGroupBuyComplete
			}
			return fmt.Errorf("advance group buy: %w", err)
		}
		out.Complete = out.ProgressAmount >= item.Goal()
		out.Item.ProgressAmount = out.ProgressAmount
		if out.Complete {
			completedAt := at
			out.Item.CompletedAt = &completedAt
		}

		reason := "Group Buy: " + item.Name
		out.Transaction = models.Transaction{
			StudentID:     studentID,
			Type:          models.TransactionGroupBuy,
			Reason:        &reason,
			AmountShekels: -buyIn,
			CreatedAt:     at,
		}
		if err := recordTx(ctx, tx, &out.Transaction); err != nil {
			return err
		}
		out.Balance = balance - buyIn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvertToTalent exchanges rate Shekels for one Talent.
func (r *LedgerRepository) ConvertToTalent(ctx context.Context, studentID, rate int64, at time.Time) (*ConversionOutcome, error) {
	if rate <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "conversion rate must be positive")
	}
	var out ConversionOutcome
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := lockStudent(ctx, tx, studentID); err != nil {
			return err
		}
		balance, err := balanceTx(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if balance < rate {
			return appErrors.ErrInsufficientFunds
		}

		debitReason := ReasonConverted
		if err := recordTx(ctx, tx, &models.Transaction{
			StudentID:     studentID,
			Type:          models.TransactionAdjust,
			Reason:        &debitReason,
			AmountShekels: -rate,
			CreatedAt:     at,
		}); err != nil {
			return err
		}

		const upsertTalents = `INSERT INTO talents_ledger (student_id, talents) VALUES ($1, 1)
            ON CONFLICT (student_id) DO UPDATE SET talents = talents_ledger.talents + 1
            RETURNING talents`
		if err := tx.GetContext(ctx, &out.Talents, upsertTalents, studentID); err != nil {
			return fmt.Errorf("increment talents: %w", err)
		}

		markerReason := ReasonTalentAdded
		if err := recordTx(ctx, tx, &models.Transaction{
			StudentID:     studentID,
			Type:          models.TransactionConvert,
			Reason:        &markerReason,
			AmountShekels: 0,
			CreatedAt:     at,
		}); err != nil {
			return err
		}
		out.Balance = balance - rate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Undo appends a compensating adjust row for the student's latest transaction.
func (r *LedgerRepository) Undo(ctx context.Context, studentID int64, at time.Time) (*models.Transaction, error) {
	var undo models.Transaction
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := lockStudent(ctx, tx, studentID); err != nil {
			return err
		}
		const latestQuery = `SELECT id, student_id, type, reason, amount_shekels, created_at FROM transactions
            WHERE student_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
		var latest models.Transaction
		if err := tx.GetContext(ctx, &latest, latestQuery, studentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrNothingToUndo
			}
			return fmt.Errorf("load latest transaction: %w", err)
		}

		reason := undoPrefix + latest.ReasonOr(undoFallback)
		undo = models.Transaction{
			StudentID:     studentID,
			Type:          models.TransactionAdjust,
			Reason:        &reason,
			AmountShekels: -latest.AmountShekels,
			CreatedAt:     at,
		}
		return recordTx(ctx, tx, &undo)
	})
	if err != nil {
		return nil, err
	}
	return &undo, nil
}

// Award appends earn or adjust rows for active students in one transaction.
// An unknown or inactive student aborts the whole batch.
func (r *LedgerRepository) Award(ctx context.Context, txns []models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		for i := range txns {
			active, err := lockStudent(ctx, tx, txns[i].StudentID)
			if err != nil {
				return err
			}
			if !active {
				return appErrors.Clone(appErrors.ErrStudentInactive, fmt.Sprintf("student %d is inactive", txns[i].StudentID))
			}
			if err := recordTx(ctx, tx, &txns[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LedgerRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

func lockStudent(ctx context.Context, tx *sqlx.Tx, studentID int64) (bool, error) {
	var active bool
	if err := tx.GetContext(ctx, &active, `SELECT active FROM students WHERE id = $1 FOR UPDATE`, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return false, fmt.Errorf("lock student: %w", err)
	}
	return active, nil
}

func balanceTx(ctx context.Context, tx *sqlx.Tx, studentID int64) (int64, error) {
	var balance int64
	if err := tx.GetContext(ctx, &balance, balanceQuery, studentID); err != nil {
		return 0, fmt.Errorf("sum balance: %w", err)
	}
	return balance, nil
}

func recordTx(ctx context.Context, tx *sqlx.Tx, txn *models.Transaction) error {
	if err := tx.QueryRowxContext(ctx, insertTransactionQuery, txn.StudentID, txn.Type, txn.Reason, txn.AmountShekels, txn.CreatedAt).
		Scan(&txn.ID); err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}
