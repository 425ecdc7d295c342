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

const submissionColumns = `id, assignment_id, student_id, submission_text, file_url, marks_obtained, feedback, submitted_at`

// AssignmentRepository persists assignments and submissions.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns assignments ordered by due date. When StudentID is set each row
// reports whether that student already submitted.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error) {
	if filter.Scope.Empty() {
		return []models.AssignmentDetail{}, 0, nil
	}
	var c conditions
	c.args = append(c.args, filter.StudentID)
	c.classScope("a.class_id", filter.Scope)
	if filter.SubjectID != "" {
		c.add("a.subject_id = $%d", filter.SubjectID)
	}
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT a.id, a.class_id, a.subject_id, a.teacher_id, a.title, a.description, a.due_date, a.total_marks, a.created_at,
    c.name AS class_name, s.name AS subject_name, p.full_name AS teacher_name,
    EXISTS (SELECT 1 FROM assignment_submissions sub WHERE sub.assignment_id = a.id AND sub.student_id::text = $1) AS submitted
FROM assignments a
JOIN classes c ON c.id = a.class_id
JOIN subjects s ON s.id = a.subject_id
LEFT JOIN profiles p ON p.id = a.teacher_id%s
ORDER BY a.due_date ASC
LIMIT %d OFFSET %d`, c.where(), size, offset)
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	var total int
	var countConds conditions
	countConds.classScope("a.class_id", filter.Scope)
	if filter.SubjectID != "" {
		countConds.add("a.subject_id = $%d", filter.SubjectID)
	}
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM assignments a"+countConds.where(), countConds.args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// FindByID returns an assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, class_id, subject_id, teacher_id, title, description, due_date, total_marks, created_at FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO assignments (id, class_id, subject_id, teacher_id, title, description, due_date, total_marks, created_at)
VALUES (:id, :class_id, :subject_id, :teacher_id, :title, :description, :due_date, :total_marks, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// UpsertSubmission stores or replaces a student's submission.
func (r *AssignmentRepository) UpsertSubmission(ctx context.Context, submission *models.AssignmentSubmission) (*models.AssignmentSubmission, error) {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	submission.SubmittedAt = time.Now().UTC()
	query := `INSERT INTO assignment_submissions (id, assignment_id, student_id, submission_text, file_url, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (assignment_id, student_id)
DO UPDATE SET submission_text = EXCLUDED.submission_text, file_url = EXCLUDED.file_url, submitted_at = EXCLUDED.submitted_at
RETURNING ` + submissionColumns
	var stored models.AssignmentSubmission
	if err := r.db.GetContext(ctx, &stored, query, submission.ID, submission.AssignmentID, submission.StudentID,
		submission.SubmissionText, submission.FileURL, submission.SubmittedAt); err != nil {
		return nil, fmt.Errorf("upsert submission: %w", err)
	}
	return &stored, nil
}

// ListSubmissions returns the submissions for an assignment.
func (r *AssignmentRepository) ListSubmissions(ctx context.Context, assignmentID string) ([]models.SubmissionDetail, error) {
	const query = `SELECT sub.id, sub.assignment_id, sub.student_id, sub.submission_text, sub.file_url, sub.marks_obtained, sub.feedback, sub.submitted_at,
    p.full_name AS student_name
FROM assignment_submissions sub
JOIN students st ON st.id = sub.student_id
JOIN profiles p ON p.id = st.profile_id
WHERE sub.assignment_id = $1
ORDER BY sub.submitted_at ASC`
	var submissions []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &submissions, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// GradeSubmission records marks and feedback on a submission of the assignment.
func (r *AssignmentRepository) GradeSubmission(ctx context.Context, assignmentID, submissionID string, marks *float64, feedback *string) (*models.AssignmentSubmission, error) {
	query := `UPDATE assignment_submissions SET marks_obtained = $3, feedback = $4
WHERE id = $1 AND assignment_id = $2
RETURNING ` + submissionColumns
	var stored models.AssignmentSubmission
	if err := r.db.GetContext(ctx, &stored, query, submissionID, assignmentID, marks, feedback); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("grade submission: %w", err)
	}
	return &stored, nil
}
