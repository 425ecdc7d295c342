package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Assign(ctx context.Context, assignment *models.TeacherSubject) error
}

type subjectClassLookup interface {
	FindByID(ctx context.Context, id string) (*models.ClassDetail, error)
}

type subjectProfileLookup interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// SubjectQuery holds the explicit subject filters. Mine narrows a teacher to
// the subjects they are assigned to.
type SubjectQuery struct {
	GradeLevel   *int
	LearningArea string
	Search       string
	Mine         bool
	Page         int
	PageSize     int
}

// CreateSubjectRequest adds a learning area to a grade.
type CreateSubjectRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Code         string  `json:"code" validate:"required,max=20"`
	GradeLevel   int     `json:"grade_level" validate:"required,min=1,max=12"`
	LearningArea *string `json:"learning_area" validate:"omitempty,max=100"`
	CBCStrand    *string `json:"cbc_strand" validate:"omitempty,max=100"`
}

// AssignSubjectRequest links a teacher to a subject in one class.
type AssignSubjectRequest struct {
	TeacherID string `json:"teacher_id" validate:"required,uuid"`
	SubjectID string `json:"subject_id" validate:"required,uuid"`
	ClassID   string `json:"class_id" validate:"required,uuid"`
}

// SubjectService manages the subject catalogue and teacher assignments.
type SubjectService struct {
	repo      subjectRepository
	classes   subjectClassLookup
	profiles  subjectProfileLookup
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs the service.
func NewSubjectService(repo subjectRepository, classes subjectClassLookup, profiles subjectProfileLookup, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, classes: classes, profiles: profiles, audit: audit, validator: validate, logger: logger}
}

// List returns subjects. Students only see the grade of their class.
func (s *SubjectService) List(ctx context.Context, session *models.Session, query SubjectQuery) ([]models.Subject, *models.Pagination, error) {
	if err := requireSession(session); err != nil {
		return nil, nil, err
	}
	filter := models.SubjectFilter{
		GradeLevel:   query.GradeLevel,
		LearningArea: query.LearningArea,
		Search:       query.Search,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}

	switch {
	case session.Role == models.RoleStudent:
		grade, ok, err := s.studentGrade(ctx, session)
		if err != nil {
			return nil, nil, err
		}
		if !ok || (query.GradeLevel != nil && *query.GradeLevel != grade) {
			return []models.Subject{}, paginate(query.Page, query.PageSize, 0), nil
		}
		filter.GradeLevel = &grade
	case query.Mine && session.Role.IsTeaching():
		filter.TeacherID = session.ProfileID
	}

	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to fetch subjects")
	}
	return subjects, paginate(query.Page, query.PageSize, total), nil
}

// Create adds a subject. Codes are unique case-insensitively.
func (s *SubjectService) Create(ctx context.Context, session *models.Session, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, internalError(err, "failed to create subject")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists")
	}
	subject := &models.Subject{
		Name:         strings.TrimSpace(req.Name),
		Code:         code,
		GradeLevel:   req.GradeLevel,
		LearningArea: req.LearningArea,
		CBCStrand:    req.CBCStrand,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, internalError(err, "failed to create subject")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionCreate, "subject", subject.ID, subject)
	return subject, nil
}

// Assign creates a teacher_subjects link. The teacher must hold a teaching role.
func (s *SubjectService) Assign(ctx context.Context, session *models.Session, req AssignSubjectRequest) (*models.TeacherSubject, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}

	teacher, err := s.profiles.FindByID(ctx, req.TeacherID)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "failed to fetch teacher")
	}
	if !teacher.Role.IsTeaching() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher must hold a teaching role")
	}
	if _, err := s.repo.FindByID(ctx, req.SubjectID); err != nil {
		return nil, lookupError(err, "subject not found", "failed to fetch subject")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return nil, lookupError(err, "class not found", "failed to fetch class")
	}

	link := &models.TeacherSubject{TeacherID: req.TeacherID, SubjectID: req.SubjectID, ClassID: req.ClassID}
	if err := s.repo.Assign(ctx, link); err != nil {
		return nil, internalError(err, "failed to assign subject")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionCreate, "teacher_subject", link.ID, link)
	return link, nil
}

func (s *SubjectService) authorize(session *models.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if !policy.Can(session.Role, policy.CapManageClasses) {
		return forbidden()
	}
	return nil
}

func (s *SubjectService) studentGrade(ctx context.Context, session *models.Session) (int, bool, error) {
	if session.ClassID == nil {
		return 0, false, nil
	}
	class, err := s.classes.FindByID(ctx, *session.ClassID)
	if err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, internalError(err, "failed to fetch subjects")
	}
	return class.GradeLevel, true, nil
}
