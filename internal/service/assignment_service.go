package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	UpsertSubmission(ctx context.Context, submission *models.AssignmentSubmission) (*models.AssignmentSubmission, error)
	ListSubmissions(ctx context.Context, assignmentID string) ([]models.SubmissionDetail, error)
	GradeSubmission(ctx context.Context, assignmentID, submissionID string, marks *float64, feedback *string) (*models.AssignmentSubmission, error)
}

// AssignmentQuery holds the explicit assignment filters.
type AssignmentQuery struct {
	ClassID   string
	SubjectID string
	Page      int
	PageSize  int
}

// CreateAssignmentRequest sets homework for a class.
type CreateAssignmentRequest struct {
	ClassID     string  `json:"class_id" validate:"required,uuid"`
	SubjectID   string  `json:"subject_id" validate:"required,uuid"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	DueDate     string  `json:"due_date" validate:"required,datetime=2006-01-02"`
	TotalMarks  int     `json:"total_marks" validate:"omitempty,min=1,max=1000"`
}

// SubmitAssignmentRequest is a student's answer.
type SubmitAssignmentRequest struct {
	SubmissionText *string `json:"submission_text" validate:"omitempty,max=10000"`
	FileURL        *string `json:"file_url" validate:"omitempty,url"`
}

// GradeSubmissionRequest grades a submission.
type GradeSubmissionRequest struct {
	MarksObtained *float64 `json:"marks_obtained" validate:"required,min=0"`
	Feedback      *string  `json:"feedback" validate:"omitempty,max=2000"`
}

const defaultAssignmentMarks = 100

// AssignmentService manages homework and submissions.
type AssignmentService struct {
	repo      assignmentRepository
	scopes    scopeResolver
	audit     auditWriter
	view      *ViewComposer
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(repo assignmentRepository, scopes scopeResolver, audit auditWriter, view *ViewComposer, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if view == nil {
		view = NewViewComposer(nil)
	}
	return &AssignmentService{
		repo:      repo,
		scopes:    scopes,
		audit:     audit,
		view:      view,
		sanitizer: bluemonday.StrictPolicy(),
		validator: validate,
		logger:    logger,
	}
}

// List returns assignments of the scoped classes ordered by due date. For a
// student each row reports whether it has been submitted.
func (s *AssignmentService) List(ctx context.Context, session *models.Session, query AssignmentQuery) ([]models.AssignmentDetail, *models.Pagination, error) {
	if err := requireSession(session); err != nil {
		return nil, nil, err
	}
	empty := func() ([]models.AssignmentDetail, *models.Pagination, error) {
		return []models.AssignmentDetail{}, paginate(query.Page, query.PageSize, 0), nil
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	classScope, ok := scope.ClassFilter(query.ClassID)
	if !ok {
		return empty()
	}
	studentID, ok := scope.NarrowStudent("")
	if !ok {
		return empty()
	}

	rows, total, err := s.repo.List(ctx, models.AssignmentFilter{
		Scope:     classScope,
		SubjectID: query.SubjectID,
		StudentID: studentID,
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to fetch assignments")
	}
	for i := range rows {
		rows[i].IsOverdue = s.view.IsOverdue(rows[i].DueDate)
	}
	return rows, paginate(query.Page, query.PageSize, total), nil
}

// Create sets an assignment for one of the teacher's classes.
func (s *AssignmentService) Create(ctx context.Context, session *models.Session, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !policy.Can(session.Role, policy.CapCreateAssignments) {
		return nil, forbidden()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	if err := s.requireClass(ctx, session, req.ClassID); err != nil {
		return nil, err
	}
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, validationError(err, "due_date must be YYYY-MM-DD")
	}
	marks := req.TotalMarks
	if marks == 0 {
		marks = defaultAssignmentMarks
	}

	assignment := &models.Assignment{
		ClassID:     req.ClassID,
		SubjectID:   req.SubjectID,
		TeacherID:   &session.ProfileID,
		Title:       strings.TrimSpace(req.Title),
		Description: s.sanitize(req.Description),
		DueDate:     due,
		TotalMarks:  marks,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, internalError(err, "failed to create assignment")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionCreate, "assignment", assignment.ID, assignment)
	return assignment, nil
}

// Submit stores the student's submission, replacing an earlier one.
func (s *AssignmentService) Submit(ctx context.Context, session *models.Session, assignmentID string, req SubmitAssignmentRequest) (*models.AssignmentSubmission, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !policy.Can(session.Role, policy.CapSubmitAssignments) {
		return nil, forbidden()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid submission payload")
	}
	text := s.sanitize(req.SubmissionText)
	if text == nil && req.FileURL == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "submission_text or file_url is required")
	}
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, lookupError(err, "assignment not found", "failed to fetch assignment")
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	studentID, ok := scope.NarrowStudent("")
	if !ok || studentID == "" || !scope.Contains(assignment.ClassID) {
		return nil, forbidden()
	}

	stored, err := s.repo.UpsertSubmission(ctx, &models.AssignmentSubmission{
		AssignmentID:   assignment.ID,
		StudentID:      studentID,
		SubmissionText: text,
		FileURL:        req.FileURL,
	})
	if err != nil {
		return nil, internalError(err, "failed to submit assignment")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionUpsert, "assignment_submission", stored.ID, map[string]string{"assignment_id": assignment.ID})
	return stored, nil
}

// Submissions lists the submissions of an assignment for its teachers.
func (s *AssignmentService) Submissions(ctx context.Context, session *models.Session, assignmentID string) ([]models.SubmissionDetail, error) {
	if _, err := s.reviewable(ctx, session, assignmentID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSubmissions(ctx, assignmentID)
	if err != nil {
		return nil, internalError(err, "failed to fetch submissions")
	}
	if rows == nil {
		rows = []models.SubmissionDetail{}
	}
	return rows, nil
}

// Grade records marks and feedback on a submission.
func (s *AssignmentService) Grade(ctx context.Context, session *models.Session, assignmentID, submissionID string, req GradeSubmissionRequest) (*models.AssignmentSubmission, error) {
	assignment, err := s.reviewable(ctx, session, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}
	if *req.MarksObtained > float64(assignment.TotalMarks) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "marks_obtained exceeds total_marks")
	}
	stored, err := s.repo.GradeSubmission(ctx, assignmentID, submissionID, req.MarksObtained, s.sanitize(req.Feedback))
	if err != nil {
		return nil, lookupError(err, "submission not found", "failed to grade submission")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionUpdate, "assignment_submission", stored.ID, req)
	return stored, nil
}

// reviewable loads the assignment and checks the session may review its submissions.
func (s *AssignmentService) reviewable(ctx context.Context, session *models.Session, assignmentID string) (*models.Assignment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !session.Role.IsTeaching() && !session.Role.IsAdministrative() {
		return nil, forbidden()
	}
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, lookupError(err, "assignment not found", "failed to fetch assignment")
	}
	if err := s.requireClass(ctx, session, assignment.ClassID); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) requireClass(ctx context.Context, session *models.Session, classID string) error {
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return err
	}
	if !scope.Contains(classID) {
		return forbidden()
	}
	return nil
}

func (s *AssignmentService) sanitize(value *string) *string {
	if value == nil {
		return nil
	}
	clean := strings.TrimSpace(s.sanitizer.Sanitize(*value))
	if clean == "" {
		return nil
	}
	return &clean
}
