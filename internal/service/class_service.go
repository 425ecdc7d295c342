package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassDetail, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

type classProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error)
}

// ClassQuery holds the explicit class filters.
type ClassQuery struct {
	ClassID    string
	GradeLevel *int
	Stream     string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// ClassRequest creates or replaces a class. Capacity defaults to 30.
type ClassRequest struct {
	Name           string  `json:"name" validate:"required,max=100"`
	GradeLevel     int     `json:"grade_level" validate:"required,min=1,max=12"`
	Stream         *string `json:"stream" validate:"omitempty,max=50"`
	AcademicYear   string  `json:"academic_year" validate:"required,max=20"`
	Capacity       int     `json:"capacity" validate:"omitempty,min=1,max=200"`
	ClassTeacherID *string `json:"class_teacher_id" validate:"omitempty,uuid"`
}

const defaultClassCapacity = 30

// ClassService manages class rooms.
type ClassService struct {
	repo      classRepository
	profiles  classProfileRepository
	scopes    scopeResolver
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs the service.
func NewClassService(repo classRepository, profiles classProfileRepository, scopes scopeResolver, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, profiles: profiles, scopes: scopes, audit: audit, validator: validate, logger: logger}
}

// List returns the classes visible to the session with teacher names and head counts.
func (s *ClassService) List(ctx context.Context, session *models.Session, query ClassQuery) ([]models.ClassDetail, *models.Pagination, error) {
	if err := requireSession(session); err != nil {
		return nil, nil, err
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	classScope, ok := scope.ClassFilter(query.ClassID)
	if !ok {
		return []models.ClassDetail{}, paginate(query.Page, query.PageSize, 0), nil
	}
	classes, total, err := s.repo.List(ctx, models.ClassFilter{
		Scope:      classScope,
		GradeLevel: query.GradeLevel,
		Stream:     query.Stream,
		Search:     query.Search,
		Page:       query.Page,
		PageSize:   query.PageSize,
		SortBy:     query.SortBy,
		SortOrder:  query.SortOrder,
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to fetch classes")
	}
	return classes, paginate(query.Page, query.PageSize, total), nil
}

// Get returns one class when it is inside the session scope.
func (s *ClassService) Get(ctx context.Context, session *models.Session, id string) (*models.ClassDetail, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	if !scope.Contains(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "class not found", "failed to fetch class")
	}
	return class, nil
}

// Create adds a class. The owning teacher must hold a teaching role.
func (s *ClassService) Create(ctx context.Context, session *models.Session, req ClassRequest) (*models.ClassDetail, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !policy.Can(session.Role, policy.CapManageClasses) {
		return nil, forbidden()
	}
	class, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, internalError(err, "failed to create class")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionCreate, "class", class.ID, class)
	return s.reload(ctx, class.ID)
}

// Update replaces a class. Admin only.
func (s *ClassService) Update(ctx context.Context, session *models.Session, id string, req ClassRequest) (*models.ClassDetail, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if session.Role != models.RoleAdmin {
		return nil, forbidden()
	}
	class, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	class.ID = id
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, lookupError(err, "class not found", "failed to update class")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionUpdate, "class", id, class)
	return s.reload(ctx, id)
}

// Delete removes a class. Admin only.
func (s *ClassService) Delete(ctx context.Context, session *models.Session, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if session.Role != models.RoleAdmin {
		return forbidden()
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "class not found", "failed to delete class")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionDelete, "class", id, nil)
	return nil
}

// Teachers lists the profiles that may own a class.
func (s *ClassService) Teachers(ctx context.Context, session *models.Session) ([]models.Profile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	active := true
	profiles, _, err := s.profiles.List(ctx, models.ProfileFilter{
		Roles:    []models.UserRole{models.RoleClassTeacher, models.RoleCommonTeacher},
		Active:   &active,
		PageSize: maxPageSize,
		SortBy:   "full_name",
	})
	if err != nil {
		return nil, internalError(err, "failed to fetch teachers")
	}
	return profiles, nil
}

func (s *ClassService) prepare(ctx context.Context, req ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class payload")
	}
	if req.ClassTeacherID != nil {
		teacher, err := s.profiles.FindByID(ctx, *req.ClassTeacherID)
		if err != nil {
			if isNoRows(err) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "class teacher not found")
			}
			return nil, internalError(err, "failed to fetch teacher")
		}
		if !teacher.Role.IsTeaching() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class teacher must hold a teaching role")
		}
	}
	capacity := req.Capacity
	if capacity == 0 {
		capacity = defaultClassCapacity
	}
	return &models.Class{
		Name:           req.Name,
		GradeLevel:     req.GradeLevel,
		Stream:         req.Stream,
		AcademicYear:   req.AcademicYear,
		Capacity:       capacity,
		ClassTeacherID: req.ClassTeacherID,
	}, nil
}

func (s *ClassService) reload(ctx context.Context, id string) (*models.ClassDetail, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "class not found", "failed to fetch class")
	}
	return class, nil
}
