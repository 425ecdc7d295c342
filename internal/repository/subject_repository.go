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

// SubjectRepository handles persistence for subjects and teacher assignments.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects filtered by grade, learning area or teacher.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	var c conditions
	if filter.GradeLevel != nil {
		c.add("s.grade_level = $%d", *filter.GradeLevel)
	}
	if filter.LearningArea != "" {
		c.add("s.learning_area = $%d", filter.LearningArea)
	}
	if filter.TeacherID != "" {
		c.add("EXISTS (SELECT 1 FROM teacher_subjects ts WHERE ts.subject_id = s.id AND ts.teacher_id = $%d)", filter.TeacherID)
	}
	if filter.Search != "" {
		c.args = append(c.args, likePattern(filter.Search))
		c.clauses = append(c.clauses, fmt.Sprintf("(LOWER(s.name) LIKE $%d OR LOWER(s.code) LIKE $%d)", len(c.args), len(c.args)))
	}
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT s.id, s.name, s.code, s.grade_level, s.learning_area, s.cbc_strand, s.created_at
FROM subjects s%s ORDER BY s.grade_level ASC, s.name ASC LIMIT %d OFFSET %d`, c.where(), size, offset)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM subjects s"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}
	return subjects, total, nil
}

// FindByID returns a subject.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, name, code, grade_level, learning_area, cbc_strand, created_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	return &subject, nil
}

// ExistsByCode checks for a subject code collision.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM subjects WHERE LOWER(code) = LOWER($1))`, code); err != nil {
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return exists, nil
}

// Create inserts a subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	subject.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO subjects (id, name, code, grade_level, learning_area, cbc_strand, created_at)
VALUES (:id, :name, :code, :grade_level, :learning_area, :cbc_strand, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Count returns the number of subjects.
func (r *SubjectRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM subjects`); err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return total, nil
}

// Assign links a teacher to a subject in a class. Existing links are returned unchanged.
func (r *SubjectRepository) Assign(ctx context.Context, assignment *models.TeacherSubject) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO teacher_subjects (id, teacher_id, subject_id, class_id, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (teacher_id, subject_id, class_id) DO UPDATE SET teacher_id = EXCLUDED.teacher_id
RETURNING id, teacher_id, subject_id, class_id, created_at`
	if err := r.db.GetContext(ctx, assignment, query, assignment.ID, assignment.TeacherID, assignment.SubjectID, assignment.ClassID, assignment.CreatedAt); err != nil {
		return fmt.Errorf("assign teacher subject: %w", err)
	}
	return nil
}
