package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

type stubTransferRepo struct {
	snapshot   *models.Snapshot
	replaced   *models.Snapshot
	replaceErr error
	cleared    bool
}

func (s *stubTransferRepo) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	return s.snapshot, nil
}

func (s *stubTransferRepo) Replace(ctx context.Context, snap *models.Snapshot) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replaced = snap
	return nil
}

func (s *stubTransferRepo) Clear(ctx context.Context) error {
	s.cleared = true
	return nil
}

var transferNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestTransferService(repo *stubTransferRepo) *TransferService {
	svc := NewTransferService(repo, nil, nil)
	svc.now = func() time.Time { return transferNow }
	return svc
}

func decode(t *testing.T, raw string) *models.ImportPayload {
	t.Helper()
	payload, err := DecodeImport([]byte(raw))
	require.NoError(t, err)
	return payload
}

func TestTransferExportUsesEmptyArrays(t *testing.T) {
	svc := newTestTransferService(&stubTransferRepo{snapshot: &models.Snapshot{
		Students: []models.Student{{ID: 1, Name: "Ava"}},
	}})

	payload, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ExportVersion, payload.Version)
	assert.Equal(t, transferNow, payload.ExportedAt)
	assert.Len(t, payload.Students, 1)
	assert.NotNil(t, payload.Items)
	assert.NotNil(t, payload.Settings)
}

func TestTransferImportLooseTypes(t *testing.T) {
	repo := &stubTransferRepo{}
	svc := newTestTransferService(repo)

	payload := decode(t, `{
		"version": 1,
		"students": [
			{"id": "1", "name": "Ava", "qr_id": "tok-a", "active": 1, "created_at": "2025-09-07 10:00:00"},
			{"id": 2, "name": "Ben", "qr_id": "tok-b", "active": "0"}
		],
		"items": [
			{"id": 5, "name": "Pizza Party", "type": "group_buy", "goal_amount": "50", "buy_in_cost": 5, "progress_amount": 10, "active": true}
		],
		"transactions": [
			{"id": 10, "student_id": "1", "type": "earn", "reason": "Attendance", "amount_shekels": 2, "created_at": "2025-09-07T10:05:00Z"}
		],
		"talents": [{"student_id": 1, "talents": "2"}]
	}`)

	result, err := svc.Import(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Students)
	assert.True(t, result.SettingsKept)

	snap := repo.replaced
	require.NotNil(t, snap)
	assert.False(t, snap.ReplaceSettings)
	assert.True(t, snap.Students[0].Active)
	assert.False(t, snap.Students[1].Active)
	assert.Equal(t, time.Date(2025, 9, 7, 10, 0, 0, 0, time.UTC), snap.Students[0].CreatedAt)
	assert.Equal(t, transferNow, snap.Students[1].CreatedAt)
	assert.Equal(t, int64(50), snap.Items[0].Goal())
	assert.Equal(t, models.DefaultItemCategory, snap.Items[0].Category)
	assert.Equal(t, int64(1), snap.Transactions[0].StudentID)
	assert.Equal(t, int64(2), snap.Talents[0].Talents)
}

func TestTransferImportReplacesSettingsWhenPresent(t *testing.T) {
	repo := &stubTransferRepo{}
	svc := newTestTransferService(repo)

	result, err := svc.Import(context.Background(), decode(t, `{"settings": []}`))
	require.NoError(t, err)
	assert.False(t, result.SettingsKept)
	assert.True(t, repo.replaced.ReplaceSettings)
}

func TestTransferImportIntegrityFailures(t *testing.T) {
	cases := map[string]string{
		"missing qr":         `{"students":[{"id":1,"name":"Ava"}]}`,
		"string id":          `{"students":[{"id":"abc","name":"Ava","qr_id":"t"}]}`,
		"duplicate student":  `{"students":[{"id":1,"name":"Ava","qr_id":"a"},{"id":1,"name":"Ben","qr_id":"b"}]}`,
		"orphan transaction": `{"transactions":[{"id":1,"student_id":9,"type":"earn","amount_shekels":1}]}`,
		"missing type":       `{"students":[{"id":1,"name":"Ava","qr_id":"a"}],"transactions":[{"id":1,"student_id":1}]}`,
		"negative talents":   `{"students":[{"id":1,"name":"Ava","qr_id":"a"}],"talents":[{"student_id":1,"talents":-1}]}`,
		"negative inventory": `{"items":[{"id":1,"name":"Gum","inventory":-3}]}`,
		"bad timestamp":      `{"students":[{"id":1,"name":"Ava","qr_id":"a","created_at":"yesterday"}]}`,
		"settings key":       `{"settings":[{"key":"","value":"x"}]}`,
		"fractional id":      `{"students":[{"id":1.5,"name":"Ava","qr_id":"a"}]}`,
		"fractional string":  `{"students":[{"id":"2.5","name":"Ava","qr_id":"a"}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &stubTransferRepo{}
			svc := newTestTransferService(repo)

			_, err := svc.Import(context.Background(), decode(t, raw))
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrIntegrity), err.Error())
			assert.Nil(t, repo.replaced)
		})
	}
}

func TestTransferImportConstraintViolation(t *testing.T) {
	repo := &stubTransferRepo{replaceErr: &pq.Error{Code: "23505"}}
	svc := newTestTransferService(repo)

	_, err := svc.Import(context.Background(), decode(t, `{"students":[{"id":1,"name":"Ava","qr_id":"a"}]}`))
	assert.True(t, appErrors.Is(err, appErrors.ErrIntegrity))

	repo.replaceErr = errors.New("connection refused")
	_, err = svc.Import(context.Background(), decode(t, `{}`))
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestDecodeImportRejectsNonObject(t *testing.T) {
	_, err := DecodeImport([]byte(`[1,2,3]`))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	_, err = DecodeImport([]byte(`{`))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestTransferClear(t *testing.T) {
	repo := &stubTransferRepo{}
	svc := newTestTransferService(repo)

	require.NoError(t, svc.Clear(context.Background()))
	assert.True(t, repo.cleared)
}

func TestTransferImportAcceptsIntegralFloats(t *testing.T) {
	repo := &stubTransferRepo{}
	svc := newTestTransferService(repo)

	_, err := svc.Import(context.Background(), decode(t, `{
		"students": [{"id": 1.0, "name": "Ava", "qr_id": "a"}, {"id": "2.0", "name": "Ben", "qr_id": "b"}],
		"items": [{"id": 3e0, "name": "Gum", "price_shekels": 4.0, "inventory": "10.0"}],
		"transactions": [{"id": 7.0, "student_id": 1.0, "type": "earn", "amount_shekels": -2.0}]
	}`))
	require.NoError(t, err)

	snap := repo.replaced
	require.NotNil(t, snap)
	assert.Equal(t, int64(1), snap.Students[0].ID)
	assert.Equal(t, int64(2), snap.Students[1].ID)
	assert.Equal(t, int64(3), snap.Items[0].ID)
	assert.Equal(t, int64(4), snap.Items[0].PriceShekels)
	assert.Equal(t, int64(10), snap.Items[0].Inventory)
	assert.Equal(t, int64(7), snap.Transactions[0].ID)
	assert.Equal(t, int64(-2), snap.Transactions[0].AmountShekels)
}

func TestTransferImportKeepsTextVerbatim(t *testing.T) {
	repo := &stubTransferRepo{}
	svc := newTestTransferService(repo)

	_, err := svc.Import(context.Background(), decode(t, `{
		"students": [
			{"id": 1, "name": "Ava", "qr_id": "a", "notes": "  allergic to nuts\n"},
			{"id": 2, "name": "Ben", "qr_id": "b", "notes": ""},
			{"id": 3, "name": "Cy", "qr_id": "c", "notes": "   "}
		],
		"transactions": [
			{"id": 1, "student_id": 1, "type": "earn", "reason": " Attendance ", "amount_shekels": 2},
			{"id": 2, "student_id": 1, "type": "earn", "reason": "", "amount_shekels": 2},
			{"id": 3, "student_id": 1, "type": "earn", "amount_shekels": 2}
		]
	}`))
	require.NoError(t, err)

	snap := repo.replaced
	require.NotNil(t, snap)
	require.NotNil(t, snap.Students[0].Notes)
	assert.Equal(t, "  allergic to nuts\n", *snap.Students[0].Notes)
	assert.Nil(t, snap.Students[1].Notes)
	require.NotNil(t, snap.Students[2].Notes)
	assert.Equal(t, "   ", *snap.Students[2].Notes)

	require.NotNil(t, snap.Transactions[0].Reason)
	assert.Equal(t, " Attendance ", *snap.Transactions[0].Reason)
	assert.Nil(t, snap.Transactions[1].Reason)
	assert.Nil(t, snap.Transactions[2].Reason)
}

func TestTransferExportImportRoundTrip(t *testing.T) {
	strPtr := func(v string) *string { return &v }
	intPtr := func(v int64) *int64 { return &v }
	created := time.Date(2025, 9, 7, 10, 0, 0, 0, time.UTC)
	completed := time.Date(2025, 10, 12, 11, 30, 15, 250000000, time.UTC)

	source := &models.Snapshot{
		Students: []models.Student{
			{ID: 1, Name: "Ava", QRID: "tok-a", Active: true, Notes: strPtr(" sits by the window "), CreatedAt: created},
			{ID: 2, Name: "Ben", QRID: "tok-b", Active: false, CreatedAt: created.Add(time.Hour)},
		},
		Items: []models.Item{
			{ID: 5, Name: "Gum", Type: models.ItemTypeStandard, PriceShekels: 3, Inventory: 12, Active: true, SortOrder: 2,
				Category: "snack", Rarity: models.RarityCommon, CreatedAt: created},
			{ID: 6, Name: "Pizza Party", Type: models.ItemTypeGroupBuy, GoalAmount: intPtr(100), BuyInCost: intPtr(10),
				ProgressAmount: 100, CompletedAt: &completed, Active: true, Category: "event", Rarity: models.RarityLegendary,
				CreatedAt: created},
		},
		Transactions: []models.Transaction{
			{ID: 10, StudentID: 1, Type: models.TransactionEarn, Reason: strPtr(" Attendance "), AmountShekels: 2, CreatedAt: created},
			{ID: 11, StudentID: 1, Type: models.TransactionGroupBuy, Reason: strPtr("Pizza Party"), AmountShekels: -10, CreatedAt: completed},
			{ID: 12, StudentID: 2, Type: models.TransactionAdjust, AmountShekels: -1, CreatedAt: created},
		},
		Talents: []models.TalentLedgerEntry{{StudentID: 1, Talents: 3}},
		Settings: []models.Setting{
			{Key: models.SettingKeyEconomy, Value: `{"bonus_min":1,"bonus_max":5}`},
			{Key: models.SettingKeyLabels, Value: `{"shekels_label":"Coins"}`},
		},
	}

	exported, err := newTestTransferService(&stubTransferRepo{snapshot: source}).Export(context.Background())
	require.NoError(t, err)
	raw, err := json.Marshal(exported)
	require.NoError(t, err)

	payload, err := DecodeImport(raw)
	require.NoError(t, err)
	repo := &stubTransferRepo{}
	result, err := newTestTransferService(repo).Import(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, result.SettingsKept)

	want := *source
	want.ReplaceSettings = true
	require.NotNil(t, repo.replaced)
	assert.Equal(t, &want, repo.replaced)
}
