package service

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

// Earn categories accepted by Earn and BulkAward.
const (
	EarnAttendance    = "attendance"
	EarnParticipation = "participation"
	EarnMemory        = "memory"
	EarnBonus         = "bonus"
)

// RandomSource draws bonus amounts. *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

type lockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// NewRandomSource returns a goroutine-safe time-seeded source.
func NewRandomSource() RandomSource {
	return &lockedRandom{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

type ledgerStore interface {
	Award(ctx context.Context, txns []models.Transaction) error
	Undo(ctx context.Context, studentID int64, at time.Time) (*models.Transaction, error)
}

type transactionStore interface {
	Record(ctx context.Context, txn *models.Transaction) error
	Balance(ctx context.Context, studentID int64) (int64, error)
	History(ctx context.Context, studentID int64, limit int) ([]models.Transaction, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type economyReader interface {
	Economy(ctx context.Context) (models.EconomySettings, error)
}

// LedgerService handles awards, manual adjustments and undo.
type LedgerService struct {
	ledger       ledgerStore
	transactions transactionStore
	students     studentFinder
	settings     economyReader
	random       RandomSource
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewLedgerService constructs a LedgerService. A nil random source falls back
// to NewRandomSource.
func NewLedgerService(ledger ledgerStore, transactions transactionStore, students studentFinder, settings economyReader, random RandomSource, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if random == nil {
		random = NewRandomSource()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		ledger:       ledger,
		transactions: transactions,
		students:     students,
		settings:     settings,
		random:       random,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Earn appends one award for an active student.
func (s *LedgerService) Earn(ctx context.Context, studentID int64, category string) (result *dto.EarnResult, err error) {
	defer func() { s.metrics.RecordLedgerOperation(OperationEarn, err) }()

	economy, err := s.settings.Economy(ctx)
	if err != nil {
		return nil, err
	}
	txn, err := s.earnTransaction(studentID, category, economy)
	if err != nil {
		return nil, err
	}
	txns := []models.Transaction{txn}
	if err := s.ledger.Award(ctx, txns); err != nil {
		return nil, passThrough(err, "failed to record award")
	}
	s.metrics.ObserveShekels(txns[0].AmountShekels)

	balance, err := s.transactions.Balance(ctx, studentID)
	if err != nil {
		return nil, internalError(err, "failed to load balance")
	}
	return &dto.EarnResult{Transaction: txns[0], Balance: balance}, nil
}

// BulkAward appends the same category to many students in one transaction.
// Bonus amounts are drawn per student.
func (s *LedgerService) BulkAward(ctx context.Context, req dto.BulkAwardRequest) (result *dto.BulkAwardResult, err error) {
	defer func() { s.metrics.RecordLedgerOperation(OperationBulkAward, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid bulk award payload")
	}
	economy, err := s.settings.Economy(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(req.StudentIDs))
	txns := make([]models.Transaction, 0, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		txn, err := s.earnTransaction(id, req.Type, economy)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	if err := s.ledger.Award(ctx, txns); err != nil {
		return nil, passThrough(err, "failed to record bulk award")
	}
	var total int64
	for _, txn := range txns {
		total += txn.AmountShekels
	}
	s.metrics.ObserveShekels(total)
	s.logger.Info("bulk award recorded", zap.String("type", req.Type), zap.Int("students", len(txns)), zap.Int64("shekels", total))
	return &dto.BulkAwardResult{Transactions: txns}, nil
}

// Adjust appends a manual signed correction with a mandatory reason.
func (s *LedgerService) Adjust(ctx context.Context, studentID int64, req dto.AdjustRequest) (result *dto.EarnResult, err error) {
	defer func() { s.metrics.RecordLedgerOperation(OperationAdjust, err) }()

	req.Reason = strings.TrimSpace(req.Reason)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "amount and reason are required")
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}

	reason := req.Reason
	txn := models.Transaction{
		StudentID:     studentID,
		Type:          models.TransactionAdjust,
		Reason:        &reason,
		AmountShekels: *req.Amount,
		CreatedAt:     s.now(),
	}
	if err := s.transactions.Record(ctx, &txn); err != nil {
		return nil, internalError(err, "failed to record adjustment")
	}
	s.metrics.ObserveShekels(txn.AmountShekels)
	s.logger.Info("manual adjustment recorded", zap.Int64("student_id", studentID), zap.Int64("amount", txn.AmountShekels))

	balance, err := s.transactions.Balance(ctx, studentID)
	if err != nil {
		return nil, internalError(err, "failed to load balance")
	}
	return &dto.EarnResult{Transaction: txn, Balance: balance}, nil
}

// Undo compensates the student's most recent transaction.
func (s *LedgerService) Undo(ctx context.Context, studentID int64) (result *dto.EarnResult, err error) {
	defer func() { s.metrics.RecordLedgerOperation(OperationUndo, err) }()

	txn, err := s.ledger.Undo(ctx, studentID, s.now())
	if err != nil {
		return nil, passThrough(err, "failed to undo transaction")
	}
	s.metrics.ObserveShekels(txn.AmountShekels)
	s.logger.Info("transaction undone", zap.Int64("student_id", studentID), zap.Int64("amount", txn.AmountShekels))

	balance, err := s.transactions.Balance(ctx, studentID)
	if err != nil {
		return nil, internalError(err, "failed to load balance")
	}
	return &dto.EarnResult{Transaction: *txn, Balance: balance}, nil
}

// History returns the student's most recent transactions.
func (s *LedgerService) History(ctx context.Context, studentID int64, limit int) ([]models.Transaction, error) {
	txns, err := s.transactions.History(ctx, studentID, limit)
	if err != nil {
		return nil, internalError(err, "failed to load transactions")
	}
	return txns, nil
}

func (s *LedgerService) earnTransaction(studentID int64, category string, economy models.EconomySettings) (models.Transaction, error) {
	amount, reason, err := s.earnAmount(category, economy)
	if err != nil {
		return models.Transaction{}, err
	}
	return models.Transaction{
		StudentID:     studentID,
		Type:          models.TransactionEarn,
		Reason:        &reason,
		AmountShekels: amount,
		CreatedAt:     s.now(),
	}, nil
}

func (s *LedgerService) earnAmount(category string, economy models.EconomySettings) (int64, string, error) {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case EarnAttendance:
		return economy.AttendanceShekels, "Attendance", nil
	case EarnParticipation:
		return economy.ParticipationShekels, "Participation", nil
	case EarnMemory:
		return economy.MemoryVerseShekels, "Memory Verse", nil
	case EarnBonus:
		return drawBonus(s.random, economy.BonusMin, economy.BonusMax), "Bonus", nil
	default:
		return 0, "", appErrors.Clone(appErrors.ErrValidation, "invalid earn action")
	}
}

// drawBonus returns a uniform integer in [lo, hi]. hi below lo yields lo.
// The span is capped so Intn always gets a positive argument, even for
// records written before the settings bounds existed.
func drawBonus(random RandomSource, lo, hi int64) int64 {
	span := hi - lo
	if span < 0 {
		span = 0
	}
	if span >= models.MaxEconomyAmount {
		span = models.MaxEconomyAmount
	}
	return lo + int64(random.Intn(int(span)+1))
}
