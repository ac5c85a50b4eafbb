package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

const kioskHistoryLimit = 10

type kioskStudentReader interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentSummary, error)
	FindSummaryByQRID(ctx context.Context, qrID string) (*models.StudentSummary, error)
}

type talentEnsurer interface {
	Ensure(ctx context.Context, studentID int64) error
}

type catalogReader interface {
	Available(ctx context.Context) ([]models.Item, error)
}

type settingsReader interface {
	economyReader
	Labels(ctx context.Context) (models.CurrencyLabels, error)
}

// KioskService resolves scans and builds the student-facing page.
type KioskService struct {
	students     kioskStudentReader
	talents      talentEnsurer
	catalog      catalogReader
	settings     settingsReader
	transactions historyReader
	logger       *zap.Logger
}

// NewKioskService constructs a KioskService.
func NewKioskService(students kioskStudentReader, talents talentEnsurer, catalog catalogReader, settings settingsReader, transactions historyReader, logger *zap.Logger) *KioskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KioskService{
		students:     students,
		talents:      talents,
		catalog:      catalog,
		settings:     settings,
		transactions: transactions,
		logger:       logger,
	}
}

// Roster lists active students for manual lookup at the kiosk.
func (s *KioskService) Roster(ctx context.Context, search string) ([]models.StudentSummary, error) {
	students, err := s.students.List(ctx, models.StudentFilter{Status: models.StudentFilterActive, Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, internalError(err, "failed to list students")
	}
	return students, nil
}

// Resolve maps a scan token to its student. Inactive students are rejected.
func (s *KioskService) Resolve(ctx context.Context, qrID string) (*models.StudentSummary, error) {
	qrID = strings.TrimSpace(qrID)
	if qrID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	student, err := s.students.FindSummaryByQRID(ctx, qrID)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrStudentInactive, "")
	}
	return student, nil
}

// Page builds the post-scan view: balances, the catalog with per-student
// flags, the economy, labels and recent history.
func (s *KioskService) Page(ctx context.Context, qrID string) (*dto.KioskStudentPage, error) {
	student, err := s.Resolve(ctx, qrID)
	if err != nil {
		return nil, err
	}
	if err := s.talents.Ensure(ctx, student.ID); err != nil {
		return nil, internalError(err, "failed to prepare talents ledger")
	}

	economy, err := s.settings.Economy(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := s.settings.Labels(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.catalog.Available(ctx)
	if err != nil {
		return nil, err
	}
	txns, err := s.transactions.History(ctx, student.ID, kioskHistoryLimit)
	if err != nil {
		return nil, internalError(err, "failed to load transactions")
	}

	return &dto.KioskStudentPage{
		Student:      *student,
		Economy:      economy,
		Labels:       labels,
		Items:        KioskItems(items, student.Balance),
		Transactions: txns,
	}, nil
}

// KioskItems decorates items with affordability flags for the given balance.
func KioskItems(items []models.Item, balance int64) []dto.KioskItem {
	out := make([]dto.KioskItem, 0, len(items))
	for _, item := range items {
		entry := dto.KioskItem{Item: item}
		if item.IsGroupBuy() {
			entry.SoldOut = !item.GroupBuyConfigured() || item.GroupBuyComplete()
			entry.CanAfford = balance >= item.BuyIn()
		} else {
			entry.SoldOut = item.Inventory <= 0
			entry.CanAfford = balance >= item.PriceShekels
		}
		entry.CanBuy = entry.CanAfford && !entry.SoldOut
		out = append(out, entry)
	}
	return out
}
