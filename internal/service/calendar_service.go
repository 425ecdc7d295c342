package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type calendarRepository interface {
	List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
}

// CalendarQuery holds the explicit calendar filters. Upcoming drops events
// before today.
type CalendarQuery struct {
	From     *time.Time
	To       *time.Time
	Upcoming bool
	Page     int
	PageSize int
}

// CalendarView is one page of events plus the edit affordance.
type CalendarView struct {
	Items      []models.CalendarEventDetail
	Pagination *models.Pagination
	CanEdit    bool
}

// CreateEventRequest adds a calendar entry.
type CreateEventRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=5000"`
	EventDate     string   `json:"event_date" validate:"required,datetime=2006-01-02"`
	EventType     string   `json:"event_type" validate:"required,event_type"`
	StartTime     *string  `json:"start_time" validate:"omitempty,hhmm"`
	EndTime       *string  `json:"end_time" validate:"omitempty,hhmm"`
	IsSchoolWide  *bool    `json:"is_school_wide"`
	TargetClasses []string `json:"target_classes" validate:"omitempty,dive,uuid"`
}

// CalendarService lists and schedules school events.
type CalendarService struct {
	repo      calendarRepository
	scopes    scopeResolver
	audit     auditWriter
	view      *ViewComposer
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(repo calendarRepository, scopes scopeResolver, audit auditWriter, view *ViewComposer, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if view == nil {
		view = NewViewComposer(nil)
	}
	return &CalendarService{
		repo:      repo,
		scopes:    scopes,
		audit:     audit,
		view:      view,
		sanitizer: bluemonday.StrictPolicy(),
		validator: validate,
		logger:    logger,
	}
}

// List returns school-wide events plus events for the scoped classes ordered by date.
func (s *CalendarService) List(ctx context.Context, session *models.Session, query CalendarQuery) (*CalendarView, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	classScope := models.ClassScope{Restricted: !scope.Unrestricted, ClassIDs: scope.ClassIDs}
	if classScope.Restricted && classScope.ClassIDs == nil {
		classScope.ClassIDs = []string{}
	}

	from := query.From
	if query.Upcoming {
		now := s.view.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if from == nil || from.Before(today) {
			from = &today
		}
	}

	events, total, err := s.repo.List(ctx, models.CalendarFilter{
		Scope:    classScope,
		From:     from,
		To:       query.To,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return nil, internalError(err, "failed to fetch calendar events")
	}
	items := make([]models.CalendarEventDetail, 0, len(events))
	for _, event := range events {
		items = append(items, models.CalendarEventDetail{CalendarEvent: event, IsToday: s.view.IsToday(event.EventDate)})
	}
	return &CalendarView{
		Items:      items,
		Pagination: paginate(query.Page, query.PageSize, total),
		CanEdit:    policy.Can(session.Role, policy.CapManageCalendar),
	}, nil
}

// Create schedules an event. An event that is not school-wide must target at least one class.
func (s *CalendarService) Create(ctx context.Context, session *models.Session, req CreateEventRequest) (*models.CalendarEvent, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !policy.Can(session.Role, policy.CapManageCalendar) {
		return nil, forbidden()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid calendar payload")
	}
	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, validationError(err, "event_date must be YYYY-MM-DD")
	}
	if req.StartTime != nil && req.EndTime != nil && *req.EndTime <= *req.StartTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	schoolWide := req.IsSchoolWide == nil || *req.IsSchoolWide
	if !schoolWide && len(req.TargetClasses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "target_classes is required for class events")
	}

	event := &models.CalendarEvent{
		Title:         strings.TrimSpace(req.Title),
		EventDate:     eventDate,
		EventType:     models.EventType(req.EventType),
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		IsSchoolWide:  schoolWide,
		TargetClasses: pq.StringArray(req.TargetClasses),
		CreatedBy:     &session.ProfileID,
	}
	if req.Description != nil {
		if clean := strings.TrimSpace(s.sanitizer.Sanitize(*req.Description)); clean != "" {
			event.Description = &clean
		}
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, internalError(err, "failed to create calendar event")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionCreate, "calendar_event", event.ID, event)
	return event, nil
}
