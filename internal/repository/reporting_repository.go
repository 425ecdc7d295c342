package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// ReportingRepository exposes read-optimised aggregate queries for exports.
type ReportingRepository struct {
	db *sqlx.DB
}

// NewReportingRepository instantiates the repository.
func NewReportingRepository(db *sqlx.DB) *ReportingRepository {
	return &ReportingRepository{db: db}
}

// AttendanceSummary aggregates attendance per class.
func (r *ReportingRepository) AttendanceSummary(ctx context.Context, filter models.ReportFilter) ([]models.AttendanceSummaryRow, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT c.name AS class_name,
        COUNT(a.id) AS total,
        COUNT(a.id) FILTER (WHERE a.is_present) AS present,
        COUNT(a.id) FILTER (WHERE NOT a.is_present) AS absent,
        CASE WHEN COUNT(a.id) = 0 THEN 0 ELSE ROUND((COUNT(a.id) FILTER (WHERE a.is_present))::DECIMAL * 100 / COUNT(a.id), 1) END AS rate
        FROM classes c
        LEFT JOIN attendance a ON a.class_id = c.id`)
	var args []interface{}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		builder.WriteString(fmt.Sprintf(" AND a.date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		builder.WriteString(fmt.Sprintf(" AND a.date <= $%d", len(args)))
	}
	builder.WriteString(" WHERE 1=1")
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		builder.WriteString(fmt.Sprintf(" AND c.id = $%d", len(args)))
	}
	builder.WriteString(" GROUP BY c.id, c.name ORDER BY c.name")

	var rows []models.AttendanceSummaryRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query attendance summary: %w", err)
	}
	return rows, nil
}

// FinancialOverview aggregates transaction amounts per student.
func (r *ReportingRepository) FinancialOverview(ctx context.Context, filter models.ReportFilter) ([]models.FinancialOverviewRow, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT p.full_name AS student_name, s.student_number,
        COALESCE(SUM(f.amount), 0) AS total,
        COALESCE(SUM(f.amount) FILTER (WHERE f.payment_status = 'paid'), 0) AS paid,
        COALESCE(SUM(f.amount) FILTER (WHERE f.payment_status = 'pending'), 0) AS pending,
        COALESCE(SUM(f.amount) FILTER (WHERE f.payment_status = 'overdue'), 0) AS overdue
        FROM finance_transactions f
        JOIN students s ON s.id = f.student_id
        JOIN profiles p ON p.id = s.profile_id
        WHERE 1=1`)
	var args []interface{}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		builder.WriteString(fmt.Sprintf(" AND s.class_id = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		builder.WriteString(fmt.Sprintf(" AND f.created_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		builder.WriteString(fmt.Sprintf(" AND f.created_at <= $%d", len(args)))
	}
	builder.WriteString(" GROUP BY p.full_name, s.student_number ORDER BY p.full_name")

	var rows []models.FinancialOverviewRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query financial overview: %w", err)
	}
	return rows, nil
}

// ExamResults lists every recorded mark.
func (r *ReportingRepository) ExamResults(ctx context.Context, filter models.ReportFilter) ([]models.ExamResultRow, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT e.name AS exam_name, e.exam_date, c.name AS class_name, sub.name AS subject_name, p.full_name AS student_name,
        r.marks_obtained, e.total_marks, r.effort_level::text AS effort_level
        FROM exam_results r
        JOIN exams e ON e.id = r.exam_id
        JOIN classes c ON c.id = e.class_id
        JOIN subjects sub ON sub.id = e.subject_id
        JOIN students s ON s.id = r.student_id
        JOIN profiles p ON p.id = s.profile_id
        WHERE 1=1`)
	var args []interface{}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		builder.WriteString(fmt.Sprintf(" AND e.class_id = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		builder.WriteString(fmt.Sprintf(" AND e.exam_date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		builder.WriteString(fmt.Sprintf(" AND e.exam_date <= $%d", len(args)))
	}
	builder.WriteString(" ORDER BY e.exam_date DESC, c.name, p.full_name")

	var rows []models.ExamResultRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query exam results: %w", err)
	}
	return rows, nil
}

// TeacherWorkload counts owned classes, subject links and weekly lessons per teacher.
func (r *ReportingRepository) TeacherWorkload(ctx context.Context) ([]models.TeacherWorkloadRow, error) {
	const query = `SELECT p.full_name AS teacher_name, p.role::text AS role,
        (SELECT COUNT(*) FROM classes c WHERE c.class_teacher_id = p.id) AS classes_owned,
        (SELECT COUNT(*) FROM teacher_subjects ts WHERE ts.teacher_id = p.id) AS subject_links,
        (SELECT COUNT(*) FROM timetables t WHERE t.teacher_id = p.id) AS weekly_lessons
        FROM profiles p
        WHERE p.role IN ('class_teacher', 'common_teacher', 'intern_teacher') AND p.is_active
        ORDER BY weekly_lessons DESC, p.full_name`
	var rows []models.TeacherWorkloadRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query teacher workload: %w", err)
	}
	return rows, nil
}

// EnrollmentStatistics reports head count against capacity per class.
func (r *ReportingRepository) EnrollmentStatistics(ctx context.Context, filter models.ReportFilter) ([]models.EnrollmentRow, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT c.name AS class_name, c.grade_level, c.stream, c.academic_year, c.capacity,
        COUNT(s.id) AS students,
        ROUND(COUNT(s.id)::DECIMAL * 100 / GREATEST(c.capacity, 1), 1) AS utilization
        FROM classes c
        LEFT JOIN students s ON s.class_id = c.id
        WHERE 1=1`)
	var args []interface{}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		builder.WriteString(fmt.Sprintf(" AND c.id = $%d", len(args)))
	}
	builder.WriteString(" GROUP BY c.id ORDER BY c.grade_level, c.name")

	var rows []models.EnrollmentRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query enrollment statistics: %w", err)
	}
	return rows, nil
}
