package service

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

func newTestLedgerService(ledger *stubLedgerStore, txns *stubTransactions, students *stubStudents, economy models.EconomySettings) *LedgerService {
	svc := NewLedgerService(ledger, txns, students, &stubEconomy{economy: economy}, rand.New(rand.NewSource(1)), NewMetricsService(), nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestDrawBonusInclusiveRange(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	seen := map[int64]bool{}
	for i := 0; i < 2000; i++ {
		v := drawBonus(random, 2, 5)
		require.GreaterOrEqual(t, v, int64(2))
		require.LessOrEqual(t, v, int64(5))
		seen[v] = true
	}
	assert.Len(t, seen, 4)
}

func TestDrawBonusDegenerateRanges(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	assert.Equal(t, int64(3), drawBonus(random, 3, 3))
	assert.Equal(t, int64(4), drawBonus(random, 4, 1))
}

func TestDrawBonusExtremeRangeDoesNotPanic(t *testing.T) {
	random := rand.New(rand.NewSource(3))
	require.NotPanics(t, func() {
		v := drawBonus(random, 0, math.MaxInt64)
		assert.GreaterOrEqual(t, v, int64(0))
		assert.LessOrEqual(t, v, int64(models.MaxEconomyAmount))
	})
	require.NotPanics(t, func() { drawBonus(random, math.MinInt64, math.MaxInt64) })
}

func TestLedgerServiceEarnBonusAtLargestAllowedRange(t *testing.T) {
	economy := models.DefaultEconomySettings()
	economy.BonusMin, economy.BonusMax = 0, models.MaxEconomyAmount
	require.NoError(t, validator.New().Struct(economy))

	svc := newTestLedgerService(&stubLedgerStore{}, &stubTransactions{}, newStubStudents(), economy)
	for i := 0; i < 20; i++ {
		result, err := svc.Earn(context.Background(), 1, EarnBonus)
		require.NoError(t, err)
		assert.LessOrEqual(t, result.Transaction.AmountShekels, int64(models.MaxEconomyAmount))
	}
}

func TestLedgerServiceEarnAttendance(t *testing.T) {
	ledger := &stubLedgerStore{}
	txns := &stubTransactions{balance: 12}
	svc := newTestLedgerService(ledger, txns, newStubStudents(), models.DefaultEconomySettings())

	result, err := svc.Earn(context.Background(), 5, "Attendance")
	require.NoError(t, err)
	require.Len(t, ledger.awarded, 1)
	assert.Equal(t, models.TransactionEarn, result.Transaction.Type)
	assert.Equal(t, int64(2), result.Transaction.AmountShekels)
	assert.Equal(t, "Attendance", result.Transaction.ReasonOr(""))
	assert.Equal(t, int64(12), result.Balance)
}

func TestLedgerServiceEarnBonusWithinRange(t *testing.T) {
	economy := models.DefaultEconomySettings()
	economy.BonusMin, economy.BonusMax = 1, 4
	ledger := &stubLedgerStore{}
	svc := newTestLedgerService(ledger, &stubTransactions{}, newStubStudents(), economy)

	for i := 0; i < 50; i++ {
		result, err := svc.Earn(context.Background(), 1, EarnBonus)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Transaction.AmountShekels, int64(1))
		assert.LessOrEqual(t, result.Transaction.AmountShekels, int64(4))
	}
}

func TestLedgerServiceEarnUnknownCategory(t *testing.T) {
	ledger := &stubLedgerStore{}
	svc := newTestLedgerService(ledger, &stubTransactions{}, newStubStudents(), models.DefaultEconomySettings())

	_, err := svc.Earn(context.Background(), 1, "homework")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, ledger.awarded)
}

func TestLedgerServiceEarnInactiveStudent(t *testing.T) {
	ledger := &stubLedgerStore{awardErr: appErrors.Clone(appErrors.ErrStudentInactive, "student 1 is inactive")}
	svc := newTestLedgerService(ledger, &stubTransactions{}, newStubStudents(), models.DefaultEconomySettings())

	_, err := svc.Earn(context.Background(), 1, EarnMemory)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrStudentInactive))
}

func TestLedgerServiceBulkAwardDeduplicates(t *testing.T) {
	ledger := &stubLedgerStore{}
	svc := newTestLedgerService(ledger, &stubTransactions{}, newStubStudents(), models.DefaultEconomySettings())

	result, err := svc.BulkAward(context.Background(), dto.BulkAwardRequest{StudentIDs: []int64{3, 1, 3, 2}, Type: EarnParticipation})
	require.NoError(t, err)
	require.Len(t, result.Transactions, 3)
	ids := []int64{}
	for _, txn := range ledger.awarded {
		ids = append(ids, txn.StudentID)
		assert.Equal(t, int64(1), txn.AmountShekels)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestLedgerServiceBulkAwardValidation(t *testing.T) {
	svc := newTestLedgerService(&stubLedgerStore{}, &stubTransactions{}, newStubStudents(), models.DefaultEconomySettings())

	_, err := svc.BulkAward(context.Background(), dto.BulkAwardRequest{Type: EarnAttendance})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLedgerServiceAdjust(t *testing.T) {
	students := newStubStudents(models.StudentSummary{Student: models.Student{ID: 9, Name: "Hannah Lee", Active: false}})
	txns := &stubTransactions{balance: -4}
	svc := newTestLedgerService(&stubLedgerStore{}, txns, students, models.DefaultEconomySettings())

	result, err := svc.Adjust(context.Background(), 9, dto.AdjustRequest{Amount: int64Ptr(-4), Reason: "  lost card  "})
	require.NoError(t, err)
	require.Len(t, txns.recorded, 1)
	assert.Equal(t, models.TransactionAdjust, txns.recorded[0].Type)
	assert.Equal(t, "lost card", txns.recorded[0].ReasonOr(""))
	assert.Equal(t, int64(-4), result.Balance)
}

func TestLedgerServiceAdjustRejectsInvalid(t *testing.T) {
	students := newStubStudents(models.StudentSummary{Student: models.Student{ID: 9}})
	svc := newTestLedgerService(&stubLedgerStore{}, &stubTransactions{}, students, models.DefaultEconomySettings())

	_, err := svc.Adjust(context.Background(), 9, dto.AdjustRequest{Amount: int64Ptr(5), Reason: "   "})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Adjust(context.Background(), 9, dto.AdjustRequest{Reason: "missing amount"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Adjust(context.Background(), 404, dto.AdjustRequest{Amount: int64Ptr(5), Reason: "gift"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestLedgerServiceUndo(t *testing.T) {
	reason := "Undo: Granola Bar"
	ledger := &stubLedgerStore{undo: &models.Transaction{ID: 7, StudentID: 2, Type: models.TransactionAdjust, Reason: &reason, AmountShekels: 3}}
	svc := newTestLedgerService(ledger, &stubTransactions{balance: 10}, newStubStudents(), models.DefaultEconomySettings())

	result, err := svc.Undo(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Transaction.AmountShekels)
	assert.Equal(t, svc.now(), ledger.undoAt)

	ledger.undoErr = appErrors.ErrNothingToUndo
	_, err = svc.Undo(context.Background(), 2)
	assert.True(t, appErrors.Is(err, appErrors.ErrNothingToUndo))
}
