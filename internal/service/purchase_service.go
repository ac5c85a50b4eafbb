package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/repository"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

type purchaseLedger interface {
	Purchase(ctx context.Context, studentID, itemID int64, at time.Time) (*repository.PurchaseOutcome, error)
}

// PurchaseService sells standard items.
type PurchaseService struct {
	ledger  purchaseLedger
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewPurchaseService constructs a PurchaseService.
func NewPurchaseService(ledger purchaseLedger, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *PurchaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseService{
		ledger:  ledger,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Purchase buys one unit of an item. Either the inventory decrement and the
// spend row are both written or neither is.
func (s *PurchaseService) Purchase(ctx context.Context, studentID, itemID int64) (result *dto.PurchaseResult, err error) {
	defer func() { s.metrics.RecordLedgerOperation(OperationPurchase, err) }()

	if itemID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid item selection")
	}
	out, err := s.ledger.Purchase(ctx, studentID, itemID, s.now())
	if err != nil {
		return nil, passThrough(err, "failed to complete purchase")
	}
	s.cache.InvalidateCatalog(ctx)
	s.metrics.ObserveShekels(out.Transaction.AmountShekels)
	s.logger.Info("purchase completed",
		zap.Int64("student_id", studentID),
		zap.Int64("item_id", itemID),
		zap.Int64("price", out.Item.PriceShekels))

	return &dto.PurchaseResult{
		ItemID:    out.Item.ID,
		ItemName:  out.Item.Name,
		Price:     out.Item.PriceShekels,
		Inventory: out.Item.Inventory,
		Balance:   out.Balance,
	}, nil
}
