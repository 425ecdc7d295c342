package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	ListResults(ctx context.Context, filter models.ExamResultFilter) ([]models.ExamResultDetail, int, error)
	UpsertResult(ctx context.Context, result *models.ExamResult) (*models.ExamResult, error)
}

type examStudentLookup interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// ExamQuery holds the explicit exam filters.
type ExamQuery struct {
	ClassID   string
	SubjectID string
	Page      int
	PageSize  int
}

// ExamResultQuery holds the explicit result filters.
type ExamResultQuery struct {
	ExamID    string
	StudentID string
	Page      int
	PageSize  int
}

// CreateExamRequest schedules an exam.
type CreateExamRequest struct {
	Name            string `json:"name" validate:"required,max=150"`
	ClassID         string `json:"class_id" validate:"required,uuid"`
	SubjectID       string `json:"subject_id" validate:"required,uuid"`
	ExamDate        string `json:"exam_date" validate:"required,datetime=2006-01-02"`
	TotalMarks      int    `json:"total_marks" validate:"required,min=1,max=1000"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
}

// UpsertResultRequest records a student's result.
type UpsertResultRequest struct {
	ExamID        string   `json:"exam_id" validate:"required,uuid"`
	StudentID     string   `json:"student_id" validate:"required,uuid"`
	MarksObtained *float64 `json:"marks_obtained" validate:"omitempty,min=0"`
	EffortLevel   *string  `json:"effort_level" validate:"omitempty,effort_level"`
	Feedback      *string  `json:"feedback" validate:"omitempty,max=1000"`
}

// ExamService lists exams and records results.
type ExamService struct {
	repo      examRepository
	students  examStudentLookup
	scopes    scopeResolver
	audit     auditWriter
	view      *ViewComposer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs the service.
func NewExamService(repo examRepository, students examStudentLookup, scopes scopeResolver, audit auditWriter, view *ViewComposer, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if view == nil {
		view = NewViewComposer(nil)
	}
	return &ExamService{repo: repo, students: students, scopes: scopes, audit: audit, view: view, validator: validate, logger: logger}
}

// List returns exams of the scoped classes with their derived status.
func (s *ExamService) List(ctx context.Context, session *models.Session, query ExamQuery) ([]models.ExamDetail, *models.Pagination, error) {
	if err := requireSession(session); err != nil {
		return nil, nil, err
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	classScope, ok := scope.ClassFilter(query.ClassID)
	if !ok {
		return []models.ExamDetail{}, paginate(query.Page, query.PageSize, 0), nil
	}
	exams, total, err := s.repo.List(ctx, models.ExamFilter{
		Scope:     classScope,
		SubjectID: query.SubjectID,
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to fetch exams")
	}
	for i := range exams {
		exams[i].Status = s.view.ExamStatus(exams[i].ExamDate)
	}
	return exams, paginate(query.Page, query.PageSize, total), nil
}

// Create schedules an exam. Teaching roles may only target their classes.
func (s *ExamService) Create(ctx context.Context, session *models.Session, req CreateExamRequest) (*models.Exam, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !policy.Can(session.Role, policy.CapCreateExams) {
		return nil, forbidden()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam payload")
	}
	if err := s.requireClass(ctx, session, req.ClassID); err != nil {
		return nil, err
	}
	examDate, err := time.Parse("2006-01-02", req.ExamDate)
	if err != nil {
		return nil, validationError(err, "exam_date must be YYYY-MM-DD")
	}

	exam := &models.Exam{
		Name:            req.Name,
		ClassID:         req.ClassID,
		SubjectID:       req.SubjectID,
		ExamDate:        examDate,
		TotalMarks:      req.TotalMarks,
		DurationMinutes: req.DurationMinutes,
		CreatedBy:       &session.ProfileID,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, internalError(err, "failed to create exam")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionCreate, "exam", exam.ID, exam)
	return exam, nil
}

// Results lists exam results. A student only ever sees its own rows,
// whatever student filter it sends.
func (s *ExamService) Results(ctx context.Context, session *models.Session, query ExamResultQuery) ([]models.ExamResultDetail, *models.Pagination, error) {
	if err := requireSession(session); err != nil {
		return nil, nil, err
	}
	empty := func() ([]models.ExamResultDetail, *models.Pagination, error) {
		return []models.ExamResultDetail{}, paginate(query.Page, query.PageSize, 0), nil
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	studentID, ok := scope.NarrowStudent(query.StudentID)
	if !ok {
		return empty()
	}
	// Students are pinned to their own rows, including results from earlier classes.
	classScope := models.ClassScope{}
	if !scope.Student {
		if classScope, ok = scope.ClassFilter(""); !ok {
			return empty()
		}
	}

	results, total, err := s.repo.ListResults(ctx, models.ExamResultFilter{
		Scope:     classScope,
		ExamID:    query.ExamID,
		StudentID: studentID,
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to fetch exam results")
	}
	return results, paginate(query.Page, query.PageSize, total), nil
}

// UpsertResult records a result for a student of the exam's class.
func (s *ExamService) UpsertResult(ctx context.Context, session *models.Session, req UpsertResultRequest) (*models.ExamResult, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !policy.Can(session.Role, policy.CapRecordResults) {
		return nil, forbidden()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid result payload")
	}

	exam, err := s.repo.FindByID(ctx, req.ExamID)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to fetch exam")
	}
	if err := s.requireClass(ctx, session, exam.ClassID); err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to fetch student")
	}
	if student.ClassID == nil || *student.ClassID != exam.ClassID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student did not sit this exam")
	}
	if req.MarksObtained != nil && *req.MarksObtained > float64(exam.TotalMarks) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "marks_obtained exceeds total_marks")
	}

	result := &models.ExamResult{
		ExamID:        req.ExamID,
		StudentID:     req.StudentID,
		MarksObtained: req.MarksObtained,
		Feedback:      req.Feedback,
	}
	if req.EffortLevel != nil {
		level := models.EffortLevel(*req.EffortLevel)
		result.EffortLevel = &level
	}
	stored, err := s.repo.UpsertResult(ctx, result)
	if err != nil {
		return nil, internalError(err, "failed to update exam result")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionUpsert, "exam_result", stored.ID, stored)
	return stored, nil
}

func (s *ExamService) requireClass(ctx context.Context, session *models.Session, classID string) error {
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return err
	}
	if !scope.Contains(classID) {
		return forbidden()
	}
	return nil
}
