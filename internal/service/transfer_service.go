package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

// importTimeLayouts lists the timestamp formats accepted on import, newest first.
var importTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type transferRepository interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	Replace(ctx context.Context, snap *models.Snapshot) error
	Clear(ctx context.Context) error
}

// TransferService exports, imports and clears the whole data set.
type TransferService struct {
	repo   transferRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
}

// NewTransferService constructs a TransferService.
func NewTransferService(repo transferRepository, cache *CacheService, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Export returns a versioned snapshot of every table.
func (s *TransferService) Export(ctx context.Context) (*models.ExportPayload, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, internalError(err, "failed to export data")
	}
	payload := &models.ExportPayload{
		Version:      models.ExportVersion,
		ExportedAt:   s.now(),
		Students:     nonNil(snap.Students),
		Items:        nonNil(snap.Items),
		Transactions: nonNil(snap.Transactions),
		Talents:      nonNil(snap.Talents),
		Settings:     nonNil(snap.Settings),
	}
	return payload, nil
}

// DecodeImport parses an import document.
func DecodeImport(raw []byte) (*models.ImportPayload, error) {
	var payload models.ImportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "import payload must be a JSON object")
	}
	return &payload, nil
}

// Import validates the whole payload and then replaces every table in one
// transaction. Settings are replaced only when the payload carries a settings
// array. Any failure leaves the existing data untouched.
func (s *TransferService) Import(ctx context.Context, payload *models.ImportPayload) (*dto.ImportResult, error) {
	if payload == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "import payload must be a JSON object")
	}
	snap, err := s.buildSnapshot(payload)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, snap); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
			return nil, appErrors.Wrap(err, appErrors.ErrIntegrity.Code, appErrors.ErrIntegrity.Status, "import rows violate constraints, existing data kept")
		}
		return nil, internalError(err, "failed to import data")
	}
	s.cache.InvalidateCatalog(ctx)

	result := &dto.ImportResult{
		Students:     len(snap.Students),
		Items:        len(snap.Items),
		Transactions: len(snap.Transactions),
		Talents:      len(snap.Talents),
		Settings:     len(snap.Settings),
		SettingsKept: !snap.ReplaceSettings,
	}
	s.logger.Info("data imported",
		zap.Int("students", result.Students),
		zap.Int("items", result.Items),
		zap.Int("transactions", result.Transactions),
		zap.Bool("settings_kept", result.SettingsKept))
	return result, nil
}

// Clear deletes every student, item and ledger row. Settings are kept.
func (s *TransferService) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return internalError(err, "failed to clear data")
	}
	s.cache.InvalidateCatalog(ctx)
	s.logger.Warn("all storehouse data cleared")
	return nil
}

func (s *TransferService) buildSnapshot(payload *models.ImportPayload) (*models.Snapshot, error) {
	now := s.now()
	snap := &models.Snapshot{ReplaceSettings: payload.Settings != nil}

	studentIDs := make(map[int64]struct{}, len(payload.Students))
	for i, in := range payload.Students {
		if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.QRID) == "" {
			return nil, integrityf("student %d must include name and qr_id", i)
		}
		id, err := requireInt(in.ID, "students.id")
		if err != nil {
			return nil, err
		}
		if _, dup := studentIDs[id]; dup {
			return nil, integrityf("duplicate student id %d", id)
		}
		studentIDs[id] = struct{}{}
		active, err := looseBool(in.Active, true)
		if err != nil {
			return nil, integrityf("students.active: %v", err)
		}
		createdAt, err := importTime(in.CreatedAt, now)
		if err != nil {
			return nil, err
		}
		snap.Students = append(snap.Students, models.Student{
			ID:        id,
			Name:      in.Name,
			QRID:      in.QRID,
			Active:    active,
			Notes:     emptyOrNil(in.Notes),
			CreatedAt: createdAt,
		})
	}

	itemIDs := make(map[int64]struct{}, len(payload.Items))
	for i, in := range payload.Items {
		if strings.TrimSpace(in.Name) == "" {
			return nil, integrityf("item %d must include name", i)
		}
		item, err := importItem(in, now)
		if err != nil {
			return nil, err
		}
		if _, dup := itemIDs[item.ID]; dup {
			return nil, integrityf("duplicate item id %d", item.ID)
		}
		itemIDs[item.ID] = struct{}{}
		snap.Items = append(snap.Items, *item)
	}

	txnIDs := make(map[int64]struct{}, len(payload.Transactions))
	for i, in := range payload.Transactions {
		if strings.TrimSpace(in.Type) == "" {
			return nil, integrityf("transaction %d must include type", i)
		}
		id, err := requireInt(in.ID, "transactions.id")
		if err != nil {
			return nil, err
		}
		if _, dup := txnIDs[id]; dup {
			return nil, integrityf("duplicate transaction id %d", id)
		}
		txnIDs[id] = struct{}{}
		studentID, err := requireInt(in.StudentID, "transactions.student_id")
		if err != nil {
			return nil, err
		}
		if _, ok := studentIDs[studentID]; !ok {
			return nil, integrityf("transaction %d references unknown student %d", id, studentID)
		}
		amount, err := looseInt(in.AmountShekels, 0)
		if err != nil {
			return nil, integrityf("transactions.amount_shekels: %v", err)
		}
		createdAt, err := importTime(in.CreatedAt, now)
		if err != nil {
			return nil, err
		}
		snap.Transactions = append(snap.Transactions, models.Transaction{
			ID:            id,
			StudentID:     studentID,
			Type:          models.TransactionType(in.Type),
			Reason:        emptyOrNil(in.Reason),
			AmountShekels: amount,
			CreatedAt:     createdAt,
		})
	}

	talentIDs := make(map[int64]struct{}, len(payload.Talents))
	for _, in := range payload.Talents {
		studentID, err := requireInt(in.StudentID, "talents.student_id")
		if err != nil {
			return nil, err
		}
		if _, ok := studentIDs[studentID]; !ok {
			return nil, integrityf("talents row references unknown student %d", studentID)
		}
		if _, dup := talentIDs[studentID]; dup {
			return nil, integrityf("duplicate talents row for student %d", studentID)
		}
		talentIDs[studentID] = struct{}{}
		talents, err := looseInt(in.Talents, 0)
		if err != nil || talents < 0 {
			return nil, integrityf("talents must be a non-negative integer")
		}
		snap.Talents = append(snap.Talents, models.TalentLedgerEntry{StudentID: studentID, Talents: talents})
	}

	for _, in := range payload.Settings {
		if strings.TrimSpace(in.Key) == "" {
			return nil, integrityf("settings rows must include key")
		}
		snap.Settings = append(snap.Settings, models.Setting{Key: in.Key, Value: in.Value})
	}
	return snap, nil
}

func importItem(in models.ImportItem, now time.Time) (*models.Item, error) {
	id, err := requireInt(in.ID, "items.id")
	if err != nil {
		return nil, err
	}
	item := &models.Item{
		ID:       id,
		Name:     in.Name,
		Type:     models.NormalizeItemType(in.Type),
		Category: strings.TrimSpace(in.Category),
		Rarity:   models.NormalizeRarity(in.Rarity),
	}
	if item.Category == "" {
		item.Category = models.DefaultItemCategory
	}

	ints := []struct {
		raw  json.RawMessage
		name string
		dest *int64
	}{
		{in.PriceShekels, "items.price_shekels", &item.PriceShekels},
		{in.Inventory, "items.inventory", &item.Inventory},
		{in.ProgressAmount, "items.progress_amount", &item.ProgressAmount},
	}
	for _, field := range ints {
		value, err := looseInt(field.raw, 0)
		if err != nil || value < 0 {
			return nil, integrityf("%s must be a non-negative integer", field.name)
		}
		*field.dest = value
	}
	sortOrder, err := looseInt(in.SortOrder, 0)
	if err != nil {
		return nil, integrityf("items.sort_order: %v", err)
	}
	item.SortOrder = int(sortOrder)

	if item.GoalAmount, err = optionalInt(in.GoalAmount); err != nil {
		return nil, integrityf("items.goal_amount: %v", err)
	}
	if item.BuyInCost, err = optionalInt(in.BuyInCost); err != nil {
		return nil, integrityf("items.buy_in_cost: %v", err)
	}
	if item.Active, err = looseBool(in.Active, true); err != nil {
		return nil, integrityf("items.active: %v", err)
	}
	if in.CompletedAt != nil && strings.TrimSpace(*in.CompletedAt) != "" {
		completedAt, err := importTime(*in.CompletedAt, now)
		if err != nil {
			return nil, err
		}
		item.CompletedAt = &completedAt
	}
	if item.CreatedAt, err = importTime(in.CreatedAt, now); err != nil {
		return nil, err
	}
	return item, nil
}

func integrityf(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrIntegrity, fmt.Sprintf(format, args...))
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// emptyOrNil maps an empty string to nil and keeps everything else as
// exported, surrounding whitespace included.
func emptyOrNil(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	v := *value
	return &v
}

// parseInt accepts a JSON integer or a string holding one. Integral floats
// such as 1.0 or 2e3 are accepted too; fractions are not.
func parseInt(raw json.RawMessage) (int64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return 0, err
		}
		trimmed = []byte(strings.TrimSpace(text))
	}
	value, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err == nil {
		return value, nil
	}
	f, ferr := strconv.ParseFloat(string(trimmed), 64)
	if ferr != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, err
	}
	return int64(f), nil
}

func requireInt(raw json.RawMessage, field string) (int64, error) {
	if isNull(raw) {
		return 0, integrityf("%s is required", field)
	}
	value, err := parseInt(raw)
	if err != nil {
		return 0, integrityf("ids must be integers (%s)", field)
	}
	return value, nil
}

func looseInt(raw json.RawMessage, fallback int64) (int64, error) {
	if isNull(raw) {
		return fallback, nil
	}
	return parseInt(raw)
}

func optionalInt(raw json.RawMessage) (*int64, error) {
	if isNull(raw) {
		return nil, nil
	}
	value, err := parseInt(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// looseBool accepts true/false, 0/1 and their string forms.
func looseBool(raw json.RawMessage, fallback bool) (bool, error) {
	if isNull(raw) {
		return fallback, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return false, err
		}
		trimmed = []byte(strings.TrimSpace(text))
	}
	switch strings.ToLower(string(trimmed)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %s", string(raw))
	}
}

func importTime(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	for _, layout := range importTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, integrityf("invalid timestamp %q", raw)
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
