package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

const adminHistoryLimit = 25

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentSummary, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	FindSummaryByID(ctx context.Context, id int64) (*models.StudentSummary, error)
	ListByIDs(ctx context.Context, ids []int64) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdateQRID(ctx context.Context, id int64, qrID string) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

type historyReader interface {
	History(ctx context.Context, studentID int64, limit int) ([]models.Transaction, error)
}

// StudentService manages the student roster.
type StudentService struct {
	repo         studentRepository
	transactions historyReader
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, transactions historyReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, transactions: transactions, validator: validate, logger: logger}
}

// NewScanToken returns 16 random bytes encoded as unpadded base64url.
func NewScanToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ParseStudentFilter maps the filter query value, defaulting to active.
func ParseStudentFilter(raw string) models.StudentFilterStatus {
	switch models.StudentFilterStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case models.StudentFilterInactive:
		return models.StudentFilterInactive
	case models.StudentFilterAll:
		return models.StudentFilterAll
	default:
		return models.StudentFilterActive
	}
}

// List returns students with balances and talents.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentSummary, error) {
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list students")
	}
	return students, nil
}

// Get returns one student with recent history.
func (s *StudentService) Get(ctx context.Context, id int64) (*dto.StudentDetail, error) {
	summary, err := s.repo.FindSummaryByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	txns, err := s.transactions.History(ctx, id, adminHistoryLimit)
	if err != nil {
		return nil, internalError(err, "failed to load transactions")
	}
	return &dto.StudentDetail{Student: *summary, Transactions: txns}, nil
}

// ListByIDs returns the named students, or every active student when ids is empty.
func (s *StudentService) ListByIDs(ctx context.Context, ids []int64) ([]models.Student, error) {
	if len(ids) == 0 {
		summaries, err := s.repo.List(ctx, models.StudentFilter{Status: models.StudentFilterActive})
		if err != nil {
			return nil, internalError(err, "failed to list students")
		}
		students := make([]models.Student, 0, len(summaries))
		for _, summary := range summaries {
			students = append(students, summary.Student)
		}
		return students, nil
	}
	students, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to list students")
	}
	return students, nil
}

// Create registers a student with a fresh scan token.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "name is required")
	}
	token, err := NewScanToken()
	if err != nil {
		return nil, internalError(err, "failed to generate scan token")
	}
	student := &models.Student{
		Name:   req.Name,
		QRID:   token,
		Active: true,
		Notes:  trimmedOrNil(req.Notes),
	}
	if req.Active != nil {
		student.Active = *req.Active
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, internalError(err, "failed to create student")
	}
	s.logger.Info("student created", zap.Int64("student_id", student.ID))
	return student, nil
}

// Update patches a student's name, notes and active flag.
func (s *StudentService) Update(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
		}
		student.Name = name
	}
	if req.Notes != nil {
		student.Notes = trimmedOrNil(req.Notes)
	}
	if req.Active != nil {
		student.Active = *req.Active
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, notFoundOr(err, "student not found", "failed to update student")
	}
	return student, nil
}

// RegenerateToken replaces the scan token, invalidating printed cards.
func (s *StudentService) RegenerateToken(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	token, err := NewScanToken()
	if err != nil {
		return nil, internalError(err, "failed to generate scan token")
	}
	if err := s.repo.UpdateQRID(ctx, id, token); err != nil {
		return nil, notFoundOr(err, "student not found", "failed to update scan token")
	}
	student.QRID = token
	s.logger.Info("scan token regenerated", zap.Int64("student_id", id))
	return student, nil
}

// BulkDelete removes students and all their ledger rows.
func (s *StudentService) BulkDelete(ctx context.Context, req dto.BulkDeleteStudentsRequest) (*dto.BulkDeleteResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "select at least one student")
	}
	deleted, err := s.repo.DeleteMany(ctx, req.IDs)
	if err != nil {
		return nil, internalError(err, "failed to delete students")
	}
	s.logger.Info("students deleted", zap.Int64("count", deleted))
	return &dto.BulkDeleteResult{Deleted: deleted}, nil
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return internalError(err, internal)
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
