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

const timetableSelect = `SELECT t.id, t.class_id, t.subject_id, t.teacher_id, t.day_of_week,
    to_char(t.start_time, 'HH24:MI') AS start_time, to_char(t.end_time, 'HH24:MI') AS end_time,
    t.room_number, t.created_at, c.name AS class_name, s.name AS subject_name, s.code AS subject_code, p.full_name AS teacher_name
FROM timetables t
JOIN classes c ON c.id = t.class_id
JOIN subjects s ON s.id = t.subject_id
LEFT JOIN profiles p ON p.id = t.teacher_id`

// TimetableRepository persists weekly timetable slots.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// List returns slots ordered by day and start time.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableDetail, int, error) {
	if filter.Scope.Empty() {
		return []models.TimetableDetail{}, 0, nil
	}
	var c conditions
	c.classScope("t.class_id", filter.Scope)
	if filter.GradeLevel != nil {
		c.add("c.grade_level = $%d", *filter.GradeLevel)
	}
	if filter.Stream != "" {
		c.add("c.stream = $%d", filter.Stream)
	}
	if filter.DayOfWeek != nil {
		c.add("t.day_of_week = $%d", *filter.DayOfWeek)
	}
	if filter.TeacherID != "" {
		c.add("t.teacher_id = $%d", filter.TeacherID)
	}
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY t.day_of_week ASC, t.start_time ASC, c.name ASC LIMIT %d OFFSET %d", timetableSelect, c.where(), size, offset)
	var slots []models.TimetableDetail
	if err := r.db.SelectContext(ctx, &slots, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list timetable: %w", err)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM timetables t JOIN classes c ON c.id = t.class_id" + c.where()
	if err := r.db.GetContext(ctx, &total, countQuery, c.args...); err != nil {
		return nil, 0, fmt.Errorf("count timetable: %w", err)
	}
	return slots, total, nil
}

// FindByID returns a slot.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.TimetableDetail, error) {
	var slot models.TimetableDetail
	if err := r.db.GetContext(ctx, &slot, timetableSelect+" WHERE t.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find timetable slot: %w", err)
	}
	return &slot, nil
}

// Create inserts a slot.
func (r *TimetableRepository) Create(ctx context.Context, slot *models.TimetableSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	slot.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO timetables (id, class_id, subject_id, teacher_id, day_of_week, start_time, end_time, room_number, created_at)
VALUES (:id, :class_id, :subject_id, :teacher_id, :day_of_week, :start_time, :end_time, :room_number, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create timetable slot: %w", err)
	}
	return nil
}

// Update modifies a slot.
func (r *TimetableRepository) Update(ctx context.Context, slot *models.TimetableSlot) error {
	const query = `UPDATE timetables SET class_id = :class_id, subject_id = :subject_id, teacher_id = :teacher_id, day_of_week = :day_of_week,
start_time = :start_time, end_time = :end_time, room_number = :room_number WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, slot)
	if err != nil {
		return fmt.Errorf("update timetable slot: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a slot.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timetable slot: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
