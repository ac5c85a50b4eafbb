package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/repository"
)

type conversionLedger interface {
	ConvertToTalent(ctx context.Context, studentID, rate int64, at time.Time) (*repository.ConversionOutcome, error)
}

// ConversionService exchanges Shekels for Talents at the configured rate.
type ConversionService struct {
	ledger   conversionLedger
	settings economyReader
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewConversionService constructs a ConversionService.
func NewConversionService(ledger conversionLedger, settings economyReader, metrics *MetricsService, logger *zap.Logger) *ConversionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversionService{
		ledger:   ledger,
		settings: settings,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Convert debits one Talent's worth of Shekels and credits one Talent.
func (s *ConversionService) Convert(ctx context.Context, studentID int64) (result *dto.ConversionResult, err error) {
	defer func() { s.metrics.RecordLedgerOperation(OperationConversion, err) }()

	economy, err := s.settings.Economy(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.ledger.ConvertToTalent(ctx, studentID, economy.ShekelsPerTalent, s.now())
	if err != nil {
		return nil, passThrough(err, "failed to convert shekels")
	}
	s.metrics.ObserveShekels(-economy.ShekelsPerTalent)
	s.logger.Info("shekels converted to talent",
		zap.Int64("student_id", studentID),
		zap.Int64("rate", economy.ShekelsPerTalent),
		zap.Int64("talents", out.Talents))
	return &dto.ConversionResult{Talents: out.Talents, Balance: out.Balance}, nil
}
