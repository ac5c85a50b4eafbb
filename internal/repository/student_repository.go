package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/storehouse-api/internal/models"
)

const studentSummaryColumns = `s.id, s.name, s.qr_id, s.active, s.notes, s.created_at,
        COALESCE((SELECT SUM(t.amount_shekels) FROM transactions t WHERE t.student_id = s.id), 0) AS balance,
        COALESCE(l.talents, 0) AS talents`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students with their derived balances, sorted by name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentSummary, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	switch filter.Status {
	case models.StudentFilterActive:
		conditions = append(conditions, "s.active = TRUE")
	case models.StudentFilterInactive:
		conditions = append(conditions, "s.active = FALSE")
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(s.name) LIKE $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s
        FROM students s LEFT JOIN talents_ledger l ON l.student_id = s.id
        WHERE %s ORDER BY LOWER(s.name) ASC, s.id ASC`, studentSummaryColumns, strings.Join(conditions, " AND "))

	var students []models.StudentSummary
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID. It returns sql.ErrNoRows when missing.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	const query = `SELECT id, name, qr_id, active, notes, created_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindSummaryByID fetches a student with balance and talents.
func (r *StudentRepository) FindSummaryByID(ctx context.Context, id int64) (*models.StudentSummary, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM students s LEFT JOIN talents_ledger l ON l.student_id = s.id
        WHERE s.id = $1`, studentSummaryColumns)
	var summary models.StudentSummary
	if err := r.db.GetContext(ctx, &summary, query, id); err != nil {
		return nil, err
	}
	return &summary, nil
}

// FindSummaryByQRID resolves a scan token to a student with balance and talents.
func (r *StudentRepository) FindSummaryByQRID(ctx context.Context, qrID string) (*models.StudentSummary, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM students s LEFT JOIN talents_ledger l ON l.student_id = s.id
        WHERE s.qr_id = $1`, studentSummaryColumns)
	var summary models.StudentSummary
	if err := r.db.GetContext(ctx, &summary, query, qrID); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListByIDs returns the students whose ID is in ids, ordered by name.
func (r *StudentRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, name, qr_id, active, notes, created_at FROM students
        WHERE id = ANY($1) ORDER BY LOWER(name) ASC, id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list students by id: %w", err)
	}
	return students, nil
}

// Count returns the number of stored students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// Create inserts a new student and its empty talents row.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student tx: %w", err)
	}
	const insert = `INSERT INTO students (name, qr_id, active, notes) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if err := tx.QueryRowxContext(ctx, insert, student.Name, student.QRID, student.Active, student.Notes).
		Scan(&student.ID, &student.CreatedAt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create student: %w", err)
	}
	if _, err := tx.ExecContext(ctx, ensureTalentsQuery, student.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create talents row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create student tx: %w", err)
	}
	return nil
}

// Update modifies the editable fields of a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET name = $1, notes = $2, active = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, student.Name, student.Notes, student.Active, student.ID)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return expectAffected(res, "update student")
}

// UpdateQRID replaces the scan token of a student.
func (r *StudentRepository) UpdateQRID(ctx context.Context, id int64, qrID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET qr_id = $1 WHERE id = $2`, qrID, id)
	if err != nil {
		return fmt.Errorf("update scan token: %w", err)
	}
	return expectAffected(res, "update scan token")
}

// DeleteMany removes students with their transactions and talents rows in one transaction.
func (r *StudentRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete students tx: %w", err)
	}
	arg := pq.Array(ids)
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE student_id = ANY($1)`, arg); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete student transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM talents_ledger WHERE student_id = ANY($1)`, arg); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete student talents: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = ANY($1)`, arg)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete students: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete students rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete students tx: %w", err)
	}
	return deleted, nil
}
