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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	FindByProfileID(ctx context.Context, profileID string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type studentProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// StudentQuery holds the explicit student filters.
type StudentQuery struct {
	ClassID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentRequest links a student profile to a class with guardian details.
type StudentRequest struct {
	ProfileID     string  `json:"profile_id" validate:"required,uuid"`
	ClassID       *string `json:"class_id" validate:"omitempty,uuid"`
	StudentNumber string  `json:"student_number" validate:"required,max=50"`
	AdmissionDate string  `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	ParentName    *string `json:"parent_name" validate:"omitempty,max=100"`
	ParentPhone   *string `json:"parent_phone" validate:"omitempty,max=30"`
	ParentEmail   *string `json:"parent_email" validate:"omitempty,email"`
	StudentRole   *string `json:"student_role" validate:"omitempty,max=50"`
}

// StudentService manages student enrolment records.
type StudentService struct {
	repo      studentRepository
	profiles  studentProfileRepository
	scopes    scopeResolver
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(repo studentRepository, profiles studentProfileRepository, scopes scopeResolver, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, profiles: profiles, scopes: scopes, audit: audit, validator: validate, logger: logger}
}

// List returns students visible to the session. A student only ever sees itself.
func (s *StudentService) List(ctx context.Context, session *models.Session, query StudentQuery) ([]models.StudentDetail, *models.Pagination, error) {
	if err := requireSession(session); err != nil {
		return nil, nil, err
	}
	empty := func() ([]models.StudentDetail, *models.Pagination, error) {
		return []models.StudentDetail{}, paginate(query.Page, query.PageSize, 0), nil
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

	students, total, err := s.repo.List(ctx, models.StudentFilter{
		Scope:     classScope,
		StudentID: studentID,
		Search:    query.Search,
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to fetch students")
	}
	return students, paginate(query.Page, query.PageSize, total), nil
}

// Create enrols an existing student profile.
func (s *StudentService) Create(ctx context.Context, session *models.Session, req StudentRequest) (*models.StudentDetail, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}
	student, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByProfileID(ctx, req.ProfileID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "profile is already enrolled")
	} else if !isNoRows(err) {
		return nil, internalError(err, "failed to fetch student")
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student number already exists")
		}
		return nil, internalError(err, "failed to create student")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionCreate, "student", student.ID, student)
	return s.reload(ctx, student.ID)
}

// Update replaces the enrolment fields of a student.
func (s *StudentService) Update(ctx context.Context, session *models.Session, id string, req StudentRequest) (*models.StudentDetail, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}
	student, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	student.ID = id
	if err := s.repo.Update(ctx, student); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student number already exists")
		}
		return nil, lookupError(err, "student not found", "failed to update student")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionUpdate, "student", id, student)
	return s.reload(ctx, id)
}

func (s *StudentService) authorize(session *models.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if !policy.Can(session.Role, policy.CapManageClasses) {
		return forbidden()
	}
	return nil
}

func (s *StudentService) prepare(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	profile, err := s.profiles.FindByID(ctx, req.ProfileID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "profile not found")
		}
		return nil, internalError(err, "failed to fetch profile")
	}
	if profile.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "profile must hold the student role")
	}
	student := &models.Student{
		ProfileID:     req.ProfileID,
		ClassID:       req.ClassID,
		StudentNumber: req.StudentNumber,
		ParentName:    req.ParentName,
		ParentPhone:   req.ParentPhone,
		ParentEmail:   req.ParentEmail,
		StudentRole:   req.StudentRole,
	}
	if req.AdmissionDate != "" {
		admitted, err := time.Parse("2006-01-02", req.AdmissionDate)
		if err != nil {
			return nil, validationError(err, "admission_date must be YYYY-MM-DD")
		}
		student.AdmissionDate = &admitted
	}
	return student, nil
}

func (s *StudentService) reload(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to fetch student")
	}
	return student, nil
}
