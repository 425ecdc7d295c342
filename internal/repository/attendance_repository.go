package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const attendanceUpsert = `INSERT INTO attendance (id, student_id, class_id, date, is_present, marked_by, remarks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, date)
DO UPDATE SET class_id = EXCLUDED.class_id, is_present = EXCLUDED.is_present, marked_by = EXCLUDED.marked_by,
    remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at
RETURNING id, student_id, class_id, date, is_present, marked_by, remarks, created_at, updated_at`

// AttendanceRepository persists daily attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func attendanceConditions(filter models.AttendanceFilter) conditions {
	var c conditions
	c.classScope("a.class_id", filter.Scope)
	if filter.StudentID != "" {
		c.add("a.student_id = $%d", filter.StudentID)
	}
	if filter.Date != nil {
		c.add("a.date = $%d", *filter.Date)
	}
	if filter.DateFrom != nil {
		c.add("a.date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		c.add("a.date <= $%d", *filter.DateTo)
	}
	return c
}

// List returns attendance rows joined with student, class and marker names.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	if filter.Scope.Empty() {
		return []models.AttendanceDetail{}, 0, nil
	}
	c := attendanceConditions(filter)
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT a.id, a.student_id, a.class_id, a.date, a.is_present, a.marked_by, a.remarks, a.created_at, a.updated_at,
    sp.full_name AS student_name, s.student_number, c.name AS class_name, mp.full_name AS marked_by_name
FROM attendance a
JOIN students s ON s.id = a.student_id
JOIN profiles sp ON sp.id = s.profile_id
JOIN classes c ON c.id = a.class_id
LEFT JOIN profiles mp ON mp.id = a.marked_by%s
ORDER BY a.date DESC, sp.full_name ASC
LIMIT %d OFFSET %d`, c.where(), size, offset)
	var rows []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM attendance a"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// Counts aggregates the filtered set for statistics.
func (r *AttendanceRepository) Counts(ctx context.Context, filter models.AttendanceFilter) (models.AttendanceCounts, error) {
	if filter.Scope.Empty() {
		return models.AttendanceCounts{}, nil
	}
	c := attendanceConditions(filter)
	query := "SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE a.is_present) AS present FROM attendance a" + c.where()
	var counts models.AttendanceCounts
	if err := r.db.GetContext(ctx, &counts, query, c.args...); err != nil {
		return models.AttendanceCounts{}, fmt.Errorf("count attendance stats: %w", err)
	}
	return counts, nil
}

func prepareAttendance(record *models.AttendanceRecord, now time.Time) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}

// Upsert inserts or overwrites the mark of a student for one date.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	prepareAttendance(record, time.Now().UTC())
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, attendanceUpsert, record.ID, record.StudentID, record.ClassID, record.Date,
		record.IsPresent, record.MarkedBy, record.Remarks, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

// BulkUpsert applies every mark in one transaction.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.AttendanceRecord) ([]models.AttendanceRecord, error) {
	if len(records) == 0 {
		return []models.AttendanceRecord{}, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk attendance: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	stored := make([]models.AttendanceRecord, 0, len(records))
	for i := range records {
		rec := &records[i]
		prepareAttendance(rec, now)
		var row models.AttendanceRecord
		if err := tx.GetContext(ctx, &row, attendanceUpsert, rec.ID, rec.StudentID, rec.ClassID, rec.Date,
			rec.IsPresent, rec.MarkedBy, rec.Remarks, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("bulk upsert attendance for student %s: %w", rec.StudentID, err)
		}
		stored = append(stored, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk attendance: %w", err)
	}
	commit = true
	return stored, nil
}
