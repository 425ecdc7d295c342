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

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.AnnouncementDetail, int, error)
	CountUrgent(ctx context.Context, filter models.AnnouncementFilter) (int, error)
	Create(ctx context.Context, announcement *models.Announcement) error
}

// AnnouncementQuery holds the explicit announcement filters.
type AnnouncementQuery struct {
	IncludeExpired bool
	Page           int
	PageSize       int
}

// AnnouncementView is one page of announcements plus the urgent badge count.
type AnnouncementView struct {
	Items       []models.AnnouncementDetail `json:"items"`
	UrgentCount int                         `json:"-"`
	Pagination  *models.Pagination          `json:"-"`
	CanEdit     bool                        `json:"-"`
}

// CreateAnnouncementRequest publishes a notice. Empty targets reach everyone.
type CreateAnnouncementRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Content       string   `json:"content" validate:"required,max=20000"`
	ExpiresAt     *string  `json:"expires_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	IsUrgent      bool     `json:"is_urgent"`
	TargetRoles   []string `json:"target_roles" validate:"omitempty,dive,user_role"`
	TargetClasses []string `json:"target_classes" validate:"omitempty,dive,uuid"`
}

// AnnouncementService publishes and lists notices.
type AnnouncementService struct {
	repo      announcementRepository
	scopes    scopeResolver
	audit     auditWriter
	view      *ViewComposer
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, scopes scopeResolver, audit auditWriter, view *ViewComposer, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if view == nil {
		view = NewViewComposer(nil)
	}
	return &AnnouncementService{
		repo:      repo,
		scopes:    scopes,
		audit:     audit,
		view:      view,
		sanitizer: bluemonday.UGCPolicy(),
		validator: validate,
		logger:    logger,
	}
}

// List returns the announcements visible to the session, newest first.
func (s *AnnouncementService) List(ctx context.Context, session *models.Session, query AnnouncementQuery) (*AnnouncementView, error) {
	filter, err := s.filter(ctx, session)
	if err != nil {
		return nil, err
	}
	filter.IncludeExpired = query.IncludeExpired
	filter.Page, filter.PageSize = query.Page, query.PageSize

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to fetch announcements")
	}
	urgent, err := s.repo.CountUrgent(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to fetch announcements")
	}
	s.decorate(rows)
	return &AnnouncementView{
		Items:       rows,
		UrgentCount: urgent,
		Pagination:  paginate(query.Page, query.PageSize, total),
		CanEdit:     policy.Can(session.Role, policy.CapPublishAnnouncements),
	}, nil
}

// Recent returns the latest visible, unexpired announcements.
func (s *AnnouncementService) Recent(ctx context.Context, session *models.Session, limit int) ([]models.AnnouncementDetail, error) {
	filter, err := s.filter(ctx, session)
	if err != nil {
		return nil, err
	}
	filter.Page, filter.PageSize = 1, limit
	rows, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to fetch announcements")
	}
	s.decorate(rows)
	return rows, nil
}

// Create publishes an announcement. Content is sanitized with the UGC policy.
func (s *AnnouncementService) Create(ctx context.Context, session *models.Session, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !policy.Can(session.Role, policy.CapPublishAnnouncements) {
		return nil, forbidden()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid announcement payload")
	}
	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "content is empty after sanitization")
	}

	announcement := &models.Announcement{
		Title:         strings.TrimSpace(req.Title),
		Content:       content,
		CreatedBy:     &session.ProfileID,
		IsUrgent:      req.IsUrgent,
		TargetRoles:   pq.StringArray(req.TargetRoles),
		TargetClasses: pq.StringArray(req.TargetClasses),
	}
	if req.ExpiresAt != nil {
		expires, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return nil, validationError(err, "expires_at must be RFC3339")
		}
		announcement.ExpiresAt = &expires
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, internalError(err, "failed to create announcement")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionCreate, "announcement", announcement.ID, announcement)
	return announcement, nil
}

func (s *AnnouncementService) filter(ctx context.Context, session *models.Session) (models.AnnouncementFilter, error) {
	if err := requireSession(session); err != nil {
		return models.AnnouncementFilter{}, err
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return models.AnnouncementFilter{}, err
	}
	classScope := models.ClassScope{Restricted: !scope.Unrestricted, ClassIDs: scope.ClassIDs}
	if classScope.Restricted && classScope.ClassIDs == nil {
		classScope.ClassIDs = []string{}
	}
	return models.AnnouncementFilter{
		Role:  session.Role,
		Scope: classScope,
		Now:   s.view.Now(),
	}, nil
}

func (s *AnnouncementService) decorate(rows []models.AnnouncementDetail) {
	for i := range rows {
		rows[i].IsExpired = s.view.IsExpired(rows[i].ExpiresAt)
	}
}
