package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

func TestKioskItemsFlags(t *testing.T) {
	done := time.Now()
	items := []models.Item{
		{ID: 1, Type: models.ItemTypeStandard, PriceShekels: 5, Inventory: 3},
		{ID: 2, Type: models.ItemTypeStandard, PriceShekels: 20, Inventory: 3},
		{ID: 3, Type: models.ItemTypeStandard, PriceShekels: 1, Inventory: 0},
		{ID: 4, Type: models.ItemTypeGroupBuy, GoalAmount: int64Ptr(50), BuyInCost: int64Ptr(5), ProgressAmount: 10},
		{ID: 5, Type: models.ItemTypeGroupBuy, GoalAmount: int64Ptr(50), BuyInCost: int64Ptr(5), ProgressAmount: 50, CompletedAt: &done},
		{ID: 6, Type: models.ItemTypeGroupBuy, GoalAmount: int64Ptr(50)},
	}

	got := KioskItems(items, 10)
	require.Len(t, got, 6)

	type flags struct{ afford, soldOut, buy bool }
	want := map[int64]flags{
		1: {true, false, true},
		2: {false, false, false},
		3: {true, true, false},
		4: {true, false, true},
		5: {true, true, false},
		6: {true, true, false},
	}
	for _, entry := range got {
		w := want[entry.ID]
		assert.Equal(t, w.afford, entry.CanAfford, "item %d can_afford", entry.ID)
		assert.Equal(t, w.soldOut, entry.SoldOut, "item %d sold_out", entry.ID)
		assert.Equal(t, w.buy, entry.CanBuy, "item %d can_buy", entry.ID)
	}
}

func newTestKioskService(students *stubStudents, talents *stubTalents, txns *stubTransactions) *KioskService {
	settings := &stubEconomy{economy: models.DefaultEconomySettings(), labels: models.DefaultCurrencyLabels()}
	catalog := &stubCatalog{items: []models.Item{{ID: 1, Name: "Gum", PriceShekels: 1, Inventory: 5, Active: true}}}
	return NewKioskService(students, talents, catalog, settings, txns, nil)
}

func TestKioskServiceResolve(t *testing.T) {
	students := newStubStudents(
		models.StudentSummary{Student: models.Student{ID: 1, Name: "Ava", QRID: "tok-ava", Active: true}},
		models.StudentSummary{Student: models.Student{ID: 2, Name: "Ben", QRID: "tok-ben", Active: false}},
	)
	svc := newTestKioskService(students, &stubTalents{}, &stubTransactions{})

	student, err := svc.Resolve(context.Background(), " tok-ava ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), student.ID)

	_, err = svc.Resolve(context.Background(), "tok-ben")
	assert.True(t, appErrors.Is(err, appErrors.ErrStudentInactive))

	_, err = svc.Resolve(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Resolve(context.Background(), "  ")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestKioskServicePage(t *testing.T) {
	students := newStubStudents(models.StudentSummary{Student: models.Student{ID: 1, Name: "Ava", QRID: "tok", Active: true}, Balance: 3})
	talents := &stubTalents{}
	txns := &stubTransactions{history: []models.Transaction{{ID: 1, StudentID: 1, AmountShekels: 3}}}
	svc := newTestKioskService(students, talents, txns)

	page, err := svc.Page(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, talents.ensured)
	assert.Equal(t, kioskHistoryLimit, txns.limit)
	assert.Equal(t, "Shekels", page.Labels.ShekelsLabel)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].CanBuy)
	assert.Len(t, page.Transactions, 1)
}

func TestKioskServiceRosterOnlyActive(t *testing.T) {
	students := newStubStudents(
		models.StudentSummary{Student: models.Student{ID: 1, Active: true}},
		models.StudentSummary{Student: models.Student{ID: 2, Active: false}},
	)
	svc := newTestKioskService(students, &stubTalents{}, &stubTransactions{})

	roster, err := svc.Roster(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}
