package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
)

var demoStudents = []string{
	"Avery Johnson",
	"Brooklyn Carter",
	"Caleb Wilson",
	"Daisy Patel",
	"Elijah Brooks",
	"Faith Ramirez",
	"Gavin Scott",
	"Hannah Lee",
	"Isaac Perry",
	"Jasmine Reed",
}

var demoItems = []dto.UpsertItemRequest{
	{Name: "Granola Bar", PriceShekels: 3, Inventory: 24, SortOrder: 1, Category: "snack", Rarity: string(models.RarityCommon)},
	{Name: "Fruit Snacks", PriceShekels: 2, Inventory: 30, SortOrder: 2, Category: "snack", Rarity: string(models.RarityUncommon)},
	{Name: "Chocolate Chip Cookie", PriceShekels: 4, Inventory: 18, SortOrder: 3, Category: "snack", Rarity: string(models.RarityRare)},
	{Name: "Sticker Pack", PriceShekels: 6, Inventory: 12, SortOrder: 4, Category: "trinket", Rarity: string(models.RarityRare)},
	{Name: "Soda Can", PriceShekels: 5, Inventory: 20, SortOrder: 5, Category: "snack", Rarity: string(models.RarityLegendary)},
}

type studentCounter interface {
	Count(ctx context.Context) (int, error)
}

type studentCreator interface {
	Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error)
}

type itemCreator interface {
	Create(ctx context.Context, req dto.UpsertItemRequest) (*models.Item, error)
}

type bulkAwarder interface {
	BulkAward(ctx context.Context, req dto.BulkAwardRequest) (*dto.BulkAwardResult, error)
}

// SeedResult reports what Seed wrote.
type SeedResult struct {
	Skipped  bool `json:"skipped"`
	Students int  `json:"students"`
	Items    int  `json:"items"`
	Awards   int  `json:"awards"`
}

// SeedService fills an empty database with demo students and items.
type SeedService struct {
	counter  studentCounter
	students studentCreator
	items    itemCreator
	ledger   bulkAwarder
	logger   *zap.Logger
}

// NewSeedService constructs a SeedService.
func NewSeedService(counter studentCounter, students studentCreator, items itemCreator, ledger bulkAwarder, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{counter: counter, students: students, items: items, ledger: ledger, logger: logger}
}

// Seed creates the demo data unless any student already exists. Every
// student earns attendance; every other student also earns participation.
func (s *SeedService) Seed(ctx context.Context) (*SeedResult, error) {
	count, err := s.counter.Count(ctx)
	if err != nil {
		return nil, internalError(err, "failed to count students")
	}
	if count > 0 {
		s.logger.Info("database already has students, seed skipped", zap.Int("students", count))
		return &SeedResult{Skipped: true}, nil
	}

	result := &SeedResult{}
	all := make([]int64, 0, len(demoStudents))
	even := make([]int64, 0, (len(demoStudents)+1)/2)
	for i, name := range demoStudents {
		student, err := s.students.Create(ctx, dto.CreateStudentRequest{Name: name})
		if err != nil {
			return nil, err
		}
		all = append(all, student.ID)
		if i%2 == 0 {
			even = append(even, student.ID)
		}
		result.Students++
	}
	for _, req := range demoItems {
		if _, err := s.items.Create(ctx, req); err != nil {
			return nil, err
		}
		result.Items++
	}

	for _, award := range []dto.BulkAwardRequest{
		{StudentIDs: all, Type: EarnAttendance},
		{StudentIDs: even, Type: EarnParticipation},
	} {
		out, err := s.ledger.BulkAward(ctx, award)
		if err != nil {
			return nil, err
		}
		result.Awards += len(out.Transactions)
	}

	s.logger.Info("seed data added", zap.Int("students", result.Students), zap.Int("items", result.Items))
	return result, nil
}
