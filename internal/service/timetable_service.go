package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type timetableRepository interface {
	List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.TimetableDetail, error)
	Create(ctx context.Context, slot *models.TimetableSlot) error
	Update(ctx context.Context, slot *models.TimetableSlot) error
	Delete(ctx context.Context, id string) error
}

// TimetableQuery holds the explicit timetable filters.
type TimetableQuery struct {
	ClassID    string
	GradeLevel *int
	Stream     string
	DayOfWeek  *int
	Page       int
	PageSize   int
}

// TimetableView is one page of slots plus the edit affordance.
type TimetableView struct {
	Items      []models.TimetableDetail
	Pagination *models.Pagination
	CanEdit    bool
}

// TimetableSlotRequest creates or replaces a slot.
type TimetableSlotRequest struct {
	ClassID    string  `json:"class_id" validate:"required,uuid"`
	SubjectID  string  `json:"subject_id" validate:"required,uuid"`
	TeacherID  *string `json:"teacher_id" validate:"omitempty,uuid"`
	DayOfWeek  int     `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime  string  `json:"start_time" validate:"required,hhmm"`
	EndTime    string  `json:"end_time" validate:"required,hhmm"`
	RoomNumber *string `json:"room_number" validate:"omitempty,max=20"`
}

// TimetableService reads and edits the weekly timetable.
type TimetableService struct {
	repo      timetableRepository
	scopes    scopeResolver
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs the service.
func NewTimetableService(repo timetableRepository, scopes scopeResolver, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, scopes: scopes, audit: audit, validator: validate, logger: logger}
}

// List returns the slots visible to the session ordered by day and start time.
func (s *TimetableService) List(ctx context.Context, session *models.Session, query TimetableQuery) (*TimetableView, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	view := &TimetableView{
		Items:      []models.TimetableDetail{},
		Pagination: paginate(query.Page, query.PageSize, 0),
		CanEdit:    policy.Can(session.Role, policy.CapEditTimetable),
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	classScope, ok := scope.ClassFilter(query.ClassID)
	if !ok {
		return view, nil
	}

	rows, total, err := s.repo.List(ctx, models.TimetableFilter{
		Scope:      classScope,
		GradeLevel: query.GradeLevel,
		Stream:     query.Stream,
		DayOfWeek:  query.DayOfWeek,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		return nil, internalError(err, "failed to fetch timetable")
	}
	view.Items = rows
	view.Pagination = paginate(query.Page, query.PageSize, total)
	return view, nil
}

// Create adds a slot.
func (s *TimetableService) Create(ctx context.Context, session *models.Session, req TimetableSlotRequest) (*models.TimetableDetail, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid timetable payload")
	}
	if err := req.checkWindow(); err != nil {
		return nil, err
	}
	slot := req.slot()
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, internalError(err, "failed to update timetable")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionCreate, "timetable", slot.ID, slot)
	return s.reload(ctx, slot.ID)
}

// Update replaces a slot.
func (s *TimetableService) Update(ctx context.Context, session *models.Session, id string, req TimetableSlotRequest) (*models.TimetableDetail, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid timetable payload")
	}
	if err := req.checkWindow(); err != nil {
		return nil, err
	}
	slot := req.slot()
	slot.ID = id
	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, lookupError(err, "timetable slot not found", "failed to update timetable")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionUpdate, "timetable", id, slot)
	return s.reload(ctx, id)
}

// Delete removes a slot.
func (s *TimetableService) Delete(ctx context.Context, session *models.Session, id string) error {
	if err := s.authorize(session); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "timetable slot not found", "failed to update timetable")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionDelete, "timetable", id, nil)
	return nil
}

func (s *TimetableService) authorize(session *models.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if !policy.Can(session.Role, policy.CapEditTimetable) {
		return forbidden()
	}
	return nil
}

func (s *TimetableService) reload(ctx context.Context, id string) (*models.TimetableDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "timetable slot not found", "failed to fetch timetable")
	}
	return detail, nil
}

// checkWindow relies on the zero-padded HH:MM form enforced by the hhmm rule.
func (r TimetableSlotRequest) checkWindow() error {
	if r.EndTime <= r.StartTime {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	return nil
}

func (r TimetableSlotRequest) slot() *models.TimetableSlot {
	return &models.TimetableSlot{
		ClassID:    r.ClassID,
		SubjectID:  r.SubjectID,
		TeacherID:  r.TeacherID,
		DayOfWeek:  r.DayOfWeek,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		RoomNumber: r.RoomNumber,
	}
}
