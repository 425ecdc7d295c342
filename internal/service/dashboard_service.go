package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
)

type counter interface {
	Count(ctx context.Context) (int, error)
}

type roleCounter interface {
	CountByRoles(ctx context.Context, roles []models.UserRole) (int, error)
}

type recentAnnouncements interface {
	Recent(ctx context.Context, session *models.Session, limit int) ([]models.AnnouncementDetail, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL          time.Duration
	AnnouncementLimit int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students      counter
	Profiles      roleCounter
	Classes       counter
	Subjects      counter
	Announcements recentAnnouncements
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// DashboardService composes the landing page for any role.
type DashboardService struct {
	students      counter
	profiles      roleCounter
	classes       counter
	subjects      counter
	announcements recentAnnouncements
	cache         *CacheService
	logger        *zap.Logger
	cfg           DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.AnnouncementLimit <= 0 {
		cfg.AnnouncementLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:      params.Students,
		profiles:      params.Profiles,
		classes:       params.Classes,
		subjects:      params.Subjects,
		announcements: params.Announcements,
		cache:         params.Cache,
		logger:        logger,
		cfg:           cfg,
	}
}

// Summary returns the dashboard for the session and whether the counts came from cache.
func (s *DashboardService) Summary(ctx context.Context, session *models.Session) (*dto.DashboardResponse, bool, error) {
	if err := requireSession(session); err != nil {
		return nil, false, err
	}

	counts, hit, err := s.Counts(ctx)
	if err != nil {
		return nil, false, err
	}

	recent := []models.AnnouncementDetail{}
	if s.announcements != nil {
		rows, err := s.announcements.Recent(ctx, session, s.cfg.AnnouncementLimit)
		if err != nil {
			return nil, false, err
		}
		if rows != nil {
			recent = rows
		}
	}

	return &dto.DashboardResponse{
		Role:                session.Role,
		Badge:               policy.BadgeFor(session.Role),
		WelcomeMessage:      policy.Welcome(session.Role),
		QuickActions:        policy.QuickActions(session.Role),
		Counts:              *counts,
		RecentAnnouncements: recent,
	}, hit, nil
}

// Counts returns the four headline totals. They are fetched concurrently and
// cached under dash:counts.
func (s *DashboardService) Counts(ctx context.Context) (*models.DashboardCounts, bool, error) {
	var cached models.DashboardCounts
	value, hit, err := s.cache.Remember(ctx, CacheKeyDashboardCounts, s.cfg.CacheTTL, &cached, func(ctx context.Context) (interface{}, error) {
		return s.loadCounts(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	return value.(*models.DashboardCounts), hit, nil
}

func (s *DashboardService) loadCounts(ctx context.Context) (*models.DashboardCounts, error) {
	counts := &models.DashboardCounts{}
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		n, err := s.students.Count(gctx)
		counts.Students = n
		return wrapCount(err, "students")
	})
	group.Go(func() error {
		n, err := s.profiles.CountByRoles(gctx, models.TeachingRoles)
		counts.Teachers = n
		return wrapCount(err, "teachers")
	})
	group.Go(func() error {
		n, err := s.classes.Count(gctx)
		counts.Classes = n
		return wrapCount(err, "classes")
	})
	group.Go(func() error {
		n, err := s.subjects.Count(gctx)
		counts.Subjects = n
		return wrapCount(err, "subjects")
	})
	if err := group.Wait(); err != nil {
		s.logger.Warn("dashboard counts failed", zap.Error(err))
		return nil, err
	}
	return counts, nil
}

func wrapCount(err error, what string) error {
	if err == nil {
		return nil
	}
	return internalError(err, "failed to count "+what)
}
