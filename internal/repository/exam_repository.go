package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// ExamRepository persists exams and their results.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams ordered by date.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, int, error) {
	if filter.Scope.Empty() {
		return []models.ExamDetail{}, 0, nil
	}
	var c conditions
	c.classScope("e.class_id", filter.Scope)
	if filter.SubjectID != "" {
		c.add("e.subject_id = $%d", filter.SubjectID)
	}
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT e.id, e.name, e.class_id, e.subject_id, e.exam_date, e.total_marks, e.duration_minutes, e.created_by, e.created_at,
    c.name AS class_name, s.name AS subject_name
FROM exams e
JOIN classes c ON c.id = e.class_id
JOIN subjects s ON s.id = e.subject_id%s
ORDER BY e.exam_date DESC, e.name ASC
LIMIT %d OFFSET %d`, c.where(), size, offset)
	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM exams e"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}
	return exams, total, nil
}

// FindByID returns an exam.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, name, class_id, subject_id, exam_date, total_marks, duration_minutes, created_by, created_at FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find exam: %w", err)
	}
	return &exam, nil
}

// Create inserts an exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	exam.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO exams (id, name, class_id, subject_id, exam_date, total_marks, duration_minutes, created_by, created_at)
VALUES (:id, :name, :class_id, :subject_id, :exam_date, :total_marks, :duration_minutes, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// ListResults returns results joined with exam and student names.
func (r *ExamRepository) ListResults(ctx context.Context, filter models.ExamResultFilter) ([]models.ExamResultDetail, int, error) {
	if filter.Scope.Empty() {
		return []models.ExamResultDetail{}, 0, nil
	}
	var c conditions
	c.classScope("e.class_id", filter.Scope)
	if filter.ExamID != "" {
		c.add("r.exam_id = $%d", filter.ExamID)
	}
	if filter.StudentID != "" {
		c.add("r.student_id = $%d", filter.StudentID)
	}
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT r.id, r.exam_id, r.student_id, r.marks_obtained, r.effort_level, r.feedback, r.created_at, r.updated_at,
    e.name AS exam_name, e.exam_date, e.total_marks, e.class_id, sub.name AS subject_name, p.full_name AS student_name
FROM exam_results r
JOIN exams e ON e.id = r.exam_id
JOIN subjects sub ON sub.id = e.subject_id
JOIN students st ON st.id = r.student_id
JOIN profiles p ON p.id = st.profile_id%s
ORDER BY e.exam_date DESC, p.full_name ASC
LIMIT %d OFFSET %d`, c.where(), size, offset)
	var results []models.ExamResultDetail
	if err := r.db.SelectContext(ctx, &results, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list exam results: %w", err)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM exam_results r JOIN exams e ON e.id = r.exam_id" + c.where()
	if err := r.db.GetContext(ctx, &total, countQuery, c.args...); err != nil {
		return nil, 0, fmt.Errorf("count exam results: %w", err)
	}
	return results, total, nil
}

// UpsertResult records or overwrites a student's result on an exam.
func (r *ExamRepository) UpsertResult(ctx context.Context, result *models.ExamResult) (*models.ExamResult, error) {
	now := time.Now().UTC()
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now
	const query = `INSERT INTO exam_results (id, exam_id, student_id, marks_obtained, effort_level, feedback, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (exam_id, student_id)
DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, effort_level = EXCLUDED.effort_level, feedback = EXCLUDED.feedback, updated_at = EXCLUDED.updated_at
RETURNING id, exam_id, student_id, marks_obtained, effort_level, feedback, created_at, updated_at`
	var stored models.ExamResult
	if err := r.db.GetContext(ctx, &stored, query, result.ID, result.ExamID, result.StudentID, result.MarksObtained,
		result.EffortLevel, result.Feedback, result.CreatedAt, result.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert exam result: %w", err)
	}
	return &stored, nil
}
