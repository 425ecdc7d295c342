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

const studentDetailSelect = `SELECT s.id, s.profile_id, s.class_id, s.student_number, s.admission_date, s.parent_name, s.parent_phone, s.parent_email,
    s.student_role, s.created_at, s.updated_at, p.full_name, p.email, c.name AS class_name
FROM students s
JOIN profiles p ON p.id = s.profile_id
LEFT JOIN classes c ON c.id = s.class_id`

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students with profile and class details.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	if filter.Scope.Empty() {
		return []models.StudentDetail{}, 0, nil
	}

	var c conditions
	c.classScope("s.class_id", filter.Scope)
	if filter.StudentID != "" {
		c.add("s.id = $%d", filter.StudentID)
	}
	if filter.Search != "" {
		c.args = append(c.args, likePattern(filter.Search))
		c.clauses = append(c.clauses, fmt.Sprintf("(LOWER(p.full_name) LIKE $%d OR LOWER(s.student_number) LIKE $%d)", len(c.args), len(c.args)))
	}

	allowedSorts := map[string]string{
		"full_name":      "p.full_name",
		"student_number": "s.student_number",
		"created_at":     "s.created_at",
	}
	sortBy, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortBy = "p.full_name"
	}
	order := sortOrder(filter.SortOrder, "ASC")
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY %s %s LIMIT %d OFFSET %d", studentDetailSelect, c.where(), sortBy, order, size, offset)
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM students s JOIN profiles p ON p.id = s.profile_id" + c.where()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, c.args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns a student with details.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, studentDetailSelect+" WHERE s.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// FindByProfileID returns the student row attached to a profile.
func (r *StudentRepository) FindByProfileID(ctx context.Context, profileID string) (*models.Student, error) {
	const query = `SELECT id, profile_id, class_id, student_number, admission_date, parent_name, parent_phone, parent_email, student_role, created_at, updated_at
FROM students WHERE profile_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, profileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by profile: %w", err)
	}
	return &student, nil
}

// Create inserts a student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt, student.UpdatedAt = now, now
	const query = `INSERT INTO students (id, profile_id, class_id, student_number, admission_date, parent_name, parent_phone, parent_email, student_role, created_at, updated_at)
VALUES (:id, :profile_id, :class_id, :student_number, :admission_date, :parent_name, :parent_phone, :parent_email, :student_role, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies class placement and guardian details.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET class_id = :class_id, student_number = :student_number, admission_date = :admission_date,
parent_name = :parent_name, parent_phone = :parent_phone, parent_email = :parent_email, student_role = :student_role, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// IDsInClass returns the ids of every student placed in the class.
func (r *StudentRepository) IDsInClass(ctx context.Context, classID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM students WHERE class_id = $1`, classID); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return ids, nil
}
