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

const classDetailSelect = `SELECT c.id, c.name, c.grade_level, c.stream, c.academic_year, c.capacity, c.class_teacher_id, c.created_at, c.updated_at,
    p.full_name AS class_teacher_name,
    (SELECT COUNT(*) FROM students s WHERE s.class_id = c.id) AS student_count
FROM classes c
LEFT JOIN profiles p ON p.id = c.class_teacher_id`

// ClassRepository manages persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes matching filter criteria.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	if filter.Scope.Empty() {
		return []models.ClassDetail{}, 0, nil
	}

	var c conditions
	c.classScope("c.id", filter.Scope)
	if filter.GradeLevel != nil {
		c.add("c.grade_level = $%d", *filter.GradeLevel)
	}
	if filter.Stream != "" {
		c.add("c.stream = $%d", filter.Stream)
	}
	if filter.Search != "" {
		c.add("LOWER(c.name) LIKE $%d", likePattern(filter.Search))
	}

	allowedSorts := map[string]string{
		"name":        "c.name",
		"grade_level": "c.grade_level",
		"created_at":  "c.created_at",
	}
	sortBy, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortBy = "c.grade_level"
	}
	order := sortOrder(filter.SortOrder, "ASC")
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY %s %s, c.name ASC LIMIT %d OFFSET %d", classDetailSelect, c.where(), sortBy, order, size, offset)
	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM classes c"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindByID returns a class with its teacher name.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ClassDetail, error) {
	var class models.ClassDetail
	if err := r.db.GetContext(ctx, &class, classDetailSelect+" WHERE c.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

// Create inserts a class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt, class.UpdatedAt = now, now
	const query = `INSERT INTO classes (id, name, grade_level, stream, academic_year, capacity, class_teacher_id, created_at, updated_at)
VALUES (:id, :name, :grade_level, :stream, :academic_year, :capacity, :class_teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies a class.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, grade_level = :grade_level, stream = :stream, academic_year = :academic_year,
capacity = :capacity, class_teacher_id = :class_teacher_id, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a class.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the number of classes.
func (r *ClassRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM classes`); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return total, nil
}

// TeacherClassIDs returns the classes a teacher owns or teaches a subject in.
func (r *ClassRepository) TeacherClassIDs(ctx context.Context, teacherID string) ([]string, error) {
	const query = `SELECT id FROM classes WHERE class_teacher_id = $1
UNION
SELECT class_id FROM teacher_subjects WHERE teacher_id = $1
ORDER BY 1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher classes: %w", err)
	}
	return ids, nil
}

// CountOwnedBy returns how many classes the profile owns.
func (r *ClassRepository) CountOwnedBy(ctx context.Context, teacherID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM classes WHERE class_teacher_id = $1`, teacherID); err != nil {
		return 0, fmt.Errorf("count owned classes: %w", err)
	}
	return total, nil
}
