package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

var itemColumnNames = []string{"id", "name", "type", "price_shekels", "inventory", "goal_amount", "buy_in_cost",
	"progress_amount", "completed_at", "active", "sort_order", "category", "rarity", "created_at"}

const (
	lockStudentPattern = `SELECT active FROM students WHERE id = \$1 FOR UPDATE`
	balancePattern     = `SELECT COALESCE\(SUM\(amount_shekels\), 0\) FROM transactions WHERE student_id = \$1`
)

func newLedgerMock(t *testing.T) (*LedgerRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewLedgerRepository(sqlx.NewDb(db, "postgres")), mock, func() { db.Close() }
}

func standardItemRow(id int64, name string, price, inventory int64) *sqlmock.Rows {
	return sqlmock.NewRows(itemColumnNames).
		AddRow(id, name, "standard", price, inventory, nil, nil, 0, nil, true, 1, "snack", "common", time.Now())
}

func groupBuyRow(id int64, name string, goal, buyIn, progress int64, completedAt interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(itemColumnNames).
		AddRow(id, name, "group_buy", 0, 0, goal, buyIn, progress, completedAt, true, 1, "snack", "rare", time.Now())
}

func expectStudentLock(mock sqlmock.Sqlmock, id int64, active bool) {
	mock.ExpectQuery(lockStudentPattern).WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow(active))
}

func expectBalance(mock sqlmock.Sqlmock, id, balance int64) {
	mock.ExpectQuery(balancePattern).WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(balance))
}

func TestLedgerRepositoryPurchase(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectStudentLock(mock, 1, true)
	mock.ExpectQuery(`type = 'standard' FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(standardItemRow(7, "Granola Bar", 3, 2))
	expectBalance(mock, 1, 10)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE items SET inventory = inventory - 1 WHERE id = $1 AND inventory > 0`)).
		WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(1), "spend", "Granola Bar", int64(-3), at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
	mock.ExpectCommit()

	out, err := repo.Purchase(context.Background(), 1, 7, at)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.Balance)
	assert.Equal(t, int64(1), out.Item.Inventory)
	assert.Equal(t, int64(41), out.Transaction.ID)
	assert.Equal(t, int64(-3), out.Transaction.AmountShekels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryPurchaseGuardMissIsOutOfStock(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()

	// The row was read with stock but a concurrent buyer took the last unit.
	mock.ExpectBegin()
	expectStudentLock(mock, 1, true)
	mock.ExpectQuery(`type = 'standard' FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(standardItemRow(7, "Granola Bar", 3, 1))
	expectBalance(mock, 1, 10)
	mock.ExpectExec("UPDATE items SET inventory = inventory - 1").WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Purchase(context.Background(), 1, 7, time.Now())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrOutOfStock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryPurchaseFailures(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(mock sqlmock.Sqlmock)
		target *appErrors.Error
	}{
		{
			name: "student missing",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockStudentPattern).WithArgs(int64(1)).WillReturnRows(sqlmock.NewRows([]string{"active"}))
			},
			target: appErrors.ErrNotFound,
		},
		{
			name: "item not available",
			setup: func(mock sqlmock.Sqlmock) {
				expectStudentLock(mock, 1, true)
				mock.ExpectQuery(`type = 'standard' FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows(itemColumnNames))
			},
			target: appErrors.ErrItemNotAvailable,
		},
		{
			name: "out of stock",
			setup: func(mock sqlmock.Sqlmock) {
				expectStudentLock(mock, 1, true)
				mock.ExpectQuery(`type = 'standard' FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(standardItemRow(7, "Soda", 5, 0))
			},
			target: appErrors.ErrOutOfStock,
		},
		{
			name: "insufficient funds",
			setup: func(mock sqlmock.Sqlmock) {
				expectStudentLock(mock, 1, true)
				mock.ExpectQuery(`type = 'standard' FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(standardItemRow(7, "Soda", 5, 3))
				expectBalance(mock, 1, 4)
			},
			target: appErrors.ErrInsufficientFunds,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, cleanup := newLedgerMock(t)
			defer cleanup()
			mock.ExpectBegin()
			tc.setup(mock)
			mock.ExpectRollback()

			_, err := repo.Purchase(context.Background(), 1, 7, time.Now())
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, tc.target), "got %v", err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLedgerRepositoryContributeGroupBuyCompletes(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectStudentLock(mock, 2, true)
	mock.ExpectQuery(`FROM items WHERE id = \$1 AND active = TRUE`).WithArgs(int64(9)).
		WillReturnRows(groupBuyRow(9, "Pizza Party", 10, 5, 5, nil))
	expectBalance(mock, 2, 6)
	mock.ExpectQuery(`RETURNING progress_amount`).WithArgs(int64(5), at, int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"progress_amount"}).AddRow(10))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(2), "group_buy", "Group Buy: Pizza Party", int64(-5), at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	out, err := repo.ContributeGroupBuy(context.Background(), 2, 9, at)
	require.NoError(t, err)
	assert.True(t, out.Complete)
	assert.Equal(t, int64(10), out.ProgressAmount)
	assert.Equal(t, int64(1), out.Balance)
	require.NotNil(t, out.Item.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryContributeGroupBuyGuardMissChargesNothing(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectStudentLock(mock, 2, true)
	mock.ExpectQuery(`FROM items WHERE id = \$1 AND active = TRUE`).WithArgs(int64(9)).
		WillReturnRows(groupBuyRow(9, "Pizza Party", 10, 5, 5, nil))
	expectBalance(mock, 2, 6)
	mock.ExpectQuery(`RETURNING progress_amount`).WillReturnRows(sqlmock.NewRows([]string{"progress_amount"}))
	mock.ExpectRollback()

	_, err := repo.ContributeGroupBuy(context.Background(), 2, 9, time.Now())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrGroupBuyComplete))
	// No INSERT INTO transactions was expected, so any debit would fail here.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryContributeGroupBuySequence(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	const goal, buyIn = int64(100), int64(10)
	var progress int64
	var completedAt interface{}

	contribute := func(studentID int64, at time.Time) (*GroupBuyOutcome, error) {
		mock.ExpectBegin()
		expectStudentLock(mock, studentID, true)
		mock.ExpectQuery(`FROM items WHERE id = \$1 AND active = TRUE`).WithArgs(int64(9)).
			WillReturnRows(groupBuyRow(9, "Pizza Party", goal, buyIn, progress, completedAt))
		if completedAt != nil {
			mock.ExpectRollback()
			return repo.ContributeGroupBuy(context.Background(), studentID, 9, at)
		}
		expectBalance(mock, studentID, 25)
		mock.ExpectQuery(`RETURNING progress_amount`).WithArgs(buyIn, at, int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"progress_amount"}).AddRow(progress + buyIn))
		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs(studentID, "group_buy", "Group Buy: Pizza Party", -buyIn, at).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(studentID))
		mock.ExpectCommit()

		out, err := repo.ContributeGroupBuy(context.Background(), studentID, 9, at)
		if err == nil {
			progress = out.ProgressAmount
			if out.Item.CompletedAt != nil {
				completedAt = *out.Item.CompletedAt
			}
		}
		return out, err
	}

	for i := int64(1); i <= 3; i++ {
		out, err := contribute(i, start.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		assert.False(t, out.Complete)
		assert.Nil(t, out.Item.CompletedAt)
		assert.Equal(t, int64(15), out.Balance)
	}
	assert.Equal(t, int64(30), progress)
	assert.Nil(t, completedAt)

	for i := int64(4); i <= 9; i++ {
		out, err := contribute(i, start.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		assert.False(t, out.Complete)
	}

	tenthAt := start.Add(10 * time.Minute)
	out, err := contribute(10, tenthAt)
	require.NoError(t, err)
	assert.True(t, out.Complete)
	assert.Equal(t, goal, out.ProgressAmount)
	require.NotNil(t, out.Item.CompletedAt)
	assert.Equal(t, tenthAt, *out.Item.CompletedAt)

	_, err = contribute(11, start.Add(11*time.Minute))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrGroupBuyComplete))
	assert.Equal(t, goal, progress)
	assert.Equal(t, tenthAt, completedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryContributeGroupBuyPreconditions(t *testing.T) {
	completed := time.Now()
	cases := []struct {
		name   string
		rows   *sqlmock.Rows
		target *appErrors.Error
	}{
		{"missing", sqlmock.NewRows(itemColumnNames), appErrors.ErrItemNotAvailable},
		{"standard item", standardItemRow(9, "Soda", 5, 3), appErrors.ErrNotGroupBuy},
		{"not configured", groupBuyRow(9, "Trip", 0, 5, 0, nil), appErrors.ErrGroupBuyNotConfigured},
		{"completed", groupBuyRow(9, "Trip", 10, 5, 10, completed), appErrors.ErrGroupBuyComplete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, cleanup := newLedgerMock(t)
			defer cleanup()
			mock.ExpectBegin()
			expectStudentLock(mock, 2, true)
			mock.ExpectQuery(`FROM items WHERE id = \$1 AND active = TRUE`).WithArgs(int64(9)).WillReturnRows(tc.rows)
			mock.ExpectRollback()

			_, err := repo.ContributeGroupBuy(context.Background(), 2, 9, time.Now())
			assert.True(t, appErrors.Is(err, tc.target), "got %v", err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLedgerRepositoryConvertToTalent(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectStudentLock(mock, 3, true)
	expectBalance(mock, 3, 30)
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(3), "adjust", ReasonConverted, int64(-25), at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO talents_ledger").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"talents"}).AddRow(2))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(3), "convert", ReasonTalentAdded, int64(0), at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	out, err := repo.ConvertToTalent(context.Background(), 3, 25, at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Talents)
	assert.Equal(t, int64(5), out.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryConvertToTalentInsufficient(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectStudentLock(mock, 3, true)
	expectBalance(mock, 3, 24)
	mock.ExpectRollback()

	_, err := repo.ConvertToTalent(context.Background(), 3, 25, time.Now())
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientFunds))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryUndo(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	at := time.Now().UTC()

	mock.ExpectBegin()
	expectStudentLock(mock, 4, true)
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC LIMIT 1`).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "type", "reason", "amount_shekels", "created_at"}).
			AddRow(8, 4, "spend", nil, -6, at))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(4), "adjust", "Undo: Transaction", int64(6), at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	undo, err := repo.Undo(context.Background(), 4, at)
	require.NoError(t, err)
	assert.Equal(t, int64(6), undo.AmountShekels)
	assert.Equal(t, "Undo: Transaction", *undo.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryUndoNothing(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectStudentLock(mock, 4, true)
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC LIMIT 1`).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "type", "reason", "amount_shekels", "created_at"}))
	mock.ExpectRollback()

	_, err := repo.Undo(context.Background(), 4, time.Now())
	assert.True(t, appErrors.Is(err, appErrors.ErrNothingToUndo))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryAwardAbortsOnInactiveStudent(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	reason := "Attendance"
	at := time.Now().UTC()

	mock.ExpectBegin()
	expectStudentLock(mock, 1, true)
	mock.ExpectQuery("INSERT INTO transactions").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	expectStudentLock(mock, 2, false)
	mock.ExpectRollback()

	err := repo.Award(context.Background(), []models.Transaction{
		{StudentID: 1, Type: models.TransactionEarn, Reason: &reason, AmountShekels: 2, CreatedAt: at},
		{StudentID: 2, Type: models.TransactionEarn, Reason: &reason, AmountShekels: 2, CreatedAt: at},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrStudentInactive))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryBeginFailure(t *testing.T) {
	repo, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := repo.Undo(context.Background(), 4, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin ledger tx")
}
