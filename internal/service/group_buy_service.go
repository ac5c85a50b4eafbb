package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/repository"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

type groupBuyLedger interface {
	ContributeGroupBuy(ctx context.Context, studentID, itemID int64, at time.Time) (*repository.GroupBuyOutcome, error)
}

// GroupBuyService takes contributions towards pooled items.
type GroupBuyService struct {
	ledger  groupBuyLedger
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewGroupBuyService constructs a GroupBuyService.
func NewGroupBuyService(ledger groupBuyLedger, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *GroupBuyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupBuyService{
		ledger:  ledger,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Contribute charges the buy-in and advances the group buy. A contribution
// rejected because the goal was reached concurrently charges nothing.
func (s *GroupBuyService) Contribute(ctx context.Context, studentID, itemID int64) (result *dto.GroupBuyResult, err error) {
	defer func() { s.metrics.RecordLedgerOperation(OperationGroupBuy, err) }()

	if itemID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid item selection")
	}
	out, err := s.ledger.ContributeGroupBuy(ctx, studentID, itemID, s.now())
	if err != nil {
		return nil, passThrough(err, "failed to contribute to group buy")
	}
	s.cache.InvalidateCatalog(ctx)
	s.metrics.ObserveShekels(out.Transaction.AmountShekels)

	fields := []zap.Field{
		zap.Int64("student_id", studentID),
		zap.Int64("item_id", itemID),
		zap.Int64("progress", out.ProgressAmount),
		zap.Int64("goal", out.Item.Goal()),
	}
	if out.Complete {
		s.logger.Info("group buy completed", fields...)
	} else {
		s.logger.Info("group buy contribution recorded", fields...)
	}

	return &dto.GroupBuyResult{
		Success:        true,
		Complete:       out.Complete,
		ProgressAmount: out.ProgressAmount,
		GoalAmount:     out.Item.Goal(),
		Balance:        out.Balance,
	}, nil
}
