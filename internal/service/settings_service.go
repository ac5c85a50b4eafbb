package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

type settingRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting models.Setting) error
}

// SettingsService reads and writes the economy and currency label records.
// Nothing is cached: every call reads the stored record so an admin edit is
// visible to the next operation.
type SettingsService struct {
	repo      settingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingRepository, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger}
}

// Economy returns the current economy, falling back to defaults for a missing
// or unreadable record.
func (s *SettingsService) Economy(ctx context.Context) (models.EconomySettings, error) {
	economy := models.DefaultEconomySettings()
	if err := s.load(ctx, models.SettingKeyEconomy, &economy); err != nil {
		return models.EconomySettings{}, err
	}
	if err := s.validator.Struct(economy); err != nil {
		s.logger.Warn("stored economy settings invalid, using defaults", zap.Error(err))
		return models.DefaultEconomySettings(), nil
	}
	return economy, nil
}

// Labels returns the currency labels with blanks replaced by defaults.
func (s *SettingsService) Labels(ctx context.Context) (models.CurrencyLabels, error) {
	labels := models.DefaultCurrencyLabels()
	if err := s.load(ctx, models.SettingKeyLabels, &labels); err != nil {
		return models.CurrencyLabels{}, err
	}
	return normaliseLabels(labels), nil
}

// View returns both records for the admin settings screen.
func (s *SettingsService) View(ctx context.Context) (*dto.SettingsView, error) {
	economy, err := s.Economy(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := s.Labels(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SettingsView{Economy: economy, Labels: labels}, nil
}

// UpdateEconomy validates and stores a new economy.
func (s *SettingsService) UpdateEconomy(ctx context.Context, economy models.EconomySettings) (*models.EconomySettings, error) {
	if err := s.validator.Struct(economy); err != nil {
		return nil, validationError(err, "invalid economy settings")
	}
	if err := s.store(ctx, models.SettingKeyEconomy, economy); err != nil {
		return nil, err
	}
	s.logger.Info("economy settings updated",
		zap.Int64("shekels_per_talent", economy.ShekelsPerTalent),
		zap.Int64("bonus_min", economy.BonusMin),
		zap.Int64("bonus_max", economy.BonusMax))
	return &economy, nil
}

// UpdateLabels stores new currency labels.
func (s *SettingsService) UpdateLabels(ctx context.Context, labels models.CurrencyLabels) (*models.CurrencyLabels, error) {
	labels = normaliseLabels(labels)
	if len(labels.ShekelsLabel) > 40 || len(labels.TalentsLabel) > 40 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "labels must be at most 40 characters")
	}
	if err := s.store(ctx, models.SettingKeyLabels, labels); err != nil {
		return nil, err
	}
	return &labels, nil
}

func (s *SettingsService) load(ctx context.Context, key string, dest interface{}) error {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return internalError(err, "failed to load settings")
	}
	if err := json.Unmarshal([]byte(setting.Value), dest); err != nil {
		s.logger.Warn("stored settings unreadable, using defaults", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (s *SettingsService) store(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return internalError(err, "failed to encode settings")
	}
	if err := s.repo.Upsert(ctx, models.Setting{Key: key, Value: string(raw)}); err != nil {
		return internalError(err, "failed to save settings")
	}
	return nil
}

func normaliseLabels(labels models.CurrencyLabels) models.CurrencyLabels {
	defaults := models.DefaultCurrencyLabels()
	labels.ShekelsLabel = strings.TrimSpace(labels.ShekelsLabel)
	labels.TalentsLabel = strings.TrimSpace(labels.TalentsLabel)
	if labels.ShekelsLabel == "" {
		labels.ShekelsLabel = defaults.ShekelsLabel
	}
	if labels.TalentsLabel == "" {
		labels.TalentsLabel = defaults.TalentsLabel
	}
	return labels
}
