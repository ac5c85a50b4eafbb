package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
)

type stubEconomy struct {
	economy models.EconomySettings
	labels  models.CurrencyLabels
	err     error
}

func (s *stubEconomy) Economy(ctx context.Context) (models.EconomySettings, error) {
	if s.err != nil {
		return models.EconomySettings{}, s.err
	}
	return s.economy, nil
}

func (s *stubEconomy) Labels(ctx context.Context) (models.CurrencyLabels, error) {
	return s.labels, nil
}

type stubLedgerStore struct {
	awarded  []models.Transaction
	awardErr error
	undo     *models.Transaction
	undoErr  error
	undoAt   time.Time
}

func (s *stubLedgerStore) Award(ctx context.Context, txns []models.Transaction) error {
	if s.awardErr != nil {
		return s.awardErr
	}
	for i := range txns {
		txns[i].ID = int64(len(s.awarded) + 1)
		s.awarded = append(s.awarded, txns[i])
	}
	return nil
}

func (s *stubLedgerStore) Undo(ctx context.Context, studentID int64, at time.Time) (*models.Transaction, error) {
	s.undoAt = at
	if s.undoErr != nil {
		return nil, s.undoErr
	}
	return s.undo, nil
}

type stubTransactions struct {
	recorded []models.Transaction
	balance  int64
	history  []models.Transaction
	limit    int
	err      error
}

func (s *stubTransactions) Record(ctx context.Context, txn *models.Transaction) error {
	if s.err != nil {
		return s.err
	}
	txn.ID = int64(len(s.recorded) + 1)
	s.recorded = append(s.recorded, *txn)
	return nil
}

func (s *stubTransactions) Balance(ctx context.Context, studentID int64) (int64, error) {
	return s.balance, s.err
}

func (s *stubTransactions) History(ctx context.Context, studentID int64, limit int) ([]models.Transaction, error) {
	s.limit = limit
	return s.history, s.err
}

type stubStudents struct {
	students map[int64]models.StudentSummary
	created  []models.Student
	updated  []models.Student
	qrIDs    map[int64]string
	deleted  []int64
	count    int
	listErr  error
}

func newStubStudents(students ...models.StudentSummary) *stubStudents {
	s := &stubStudents{students: map[int64]models.StudentSummary{}, qrIDs: map[int64]string{}}
	for _, student := range students {
		s.students[student.ID] = student
	}
	return s
}

func (s *stubStudents) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentSummary, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.StudentSummary, 0, len(s.students))
	for _, student := range s.students {
		if filter.Status == models.StudentFilterActive && !student.Active {
			continue
		}
		out = append(out, student)
	}
	return out, nil
}

func (s *stubStudents) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	student, ok := s.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &student.Student, nil
}

func (s *stubStudents) FindSummaryByID(ctx context.Context, id int64) (*models.StudentSummary, error) {
	student, ok := s.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &student, nil
}

func (s *stubStudents) FindSummaryByQRID(ctx context.Context, qrID string) (*models.StudentSummary, error) {
	for _, student := range s.students {
		if student.QRID == qrID {
			found := student
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubStudents) ListByIDs(ctx context.Context, ids []int64) ([]models.Student, error) {
	out := make([]models.Student, 0, len(ids))
	for _, id := range ids {
		if student, ok := s.students[id]; ok {
			out = append(out, student.Student)
		}
	}
	return out, nil
}

func (s *stubStudents) Count(ctx context.Context) (int, error) {
	return s.count, nil
}

func (s *stubStudents) Create(ctx context.Context, student *models.Student) error {
	student.ID = int64(len(s.created) + 1)
	student.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.created = append(s.created, *student)
	s.students[student.ID] = models.StudentSummary{Student: *student}
	return nil
}

func (s *stubStudents) Update(ctx context.Context, student *models.Student) error {
	if _, ok := s.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	s.updated = append(s.updated, *student)
	return nil
}

func (s *stubStudents) UpdateQRID(ctx context.Context, id int64, qrID string) error {
	if _, ok := s.students[id]; !ok {
		return sql.ErrNoRows
	}
	s.qrIDs[id] = qrID
	return nil
}

func (s *stubStudents) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if _, ok := s.students[id]; ok {
			delete(s.students, id)
			s.deleted = append(s.deleted, id)
			deleted++
		}
	}
	return deleted, nil
}

type stubCatalog struct {
	items []models.Item
	err   error
}

func (s *stubCatalog) Available(ctx context.Context) ([]models.Item, error) {
	return s.items, s.err
}

type stubTalents struct {
	ensured []int64
}

func (s *stubTalents) Ensure(ctx context.Context, studentID int64) error {
	s.ensured = append(s.ensured, studentID)
	return nil
}

type stubBulkAwarder struct {
	requests []dto.BulkAwardRequest
}

func (s *stubBulkAwarder) BulkAward(ctx context.Context, req dto.BulkAwardRequest) (*dto.BulkAwardResult, error) {
	s.requests = append(s.requests, req)
	txns := make([]models.Transaction, len(req.StudentIDs))
	return &dto.BulkAwardResult{Transactions: txns}, nil
}

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }

func stringPtr(v string) *string { return &v }
