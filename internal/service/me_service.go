package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
)

type meProfileReader interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// MeService renders the role-aware session view.
type MeService struct {
	profiles meProfileReader
	cache    *CacheService
	navTTL   time.Duration
	logger   *zap.Logger
}

// NewMeService constructs the service. navTTL applies to the cached navigation.
func NewMeService(profiles meProfileReader, cache *CacheService, navTTL time.Duration, logger *zap.Logger) *MeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if navTTL <= 0 {
		navTTL = time.Hour
	}
	return &MeService{profiles: profiles, cache: cache, navTTL: navTTL, logger: logger}
}

// Get loads the caller's profile and composes the view around it.
func (s *MeService) Get(ctx context.Context, session *models.Session) (*dto.MeResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByID(ctx, session.ProfileID)
	if err != nil {
		return nil, lookupError(err, "profile not found", "failed to fetch profile")
	}
	return s.Compose(ctx, profile), nil
}

// Compose builds the view for a loaded profile. Unknown roles still get the
// base navigation and the default welcome.
func (s *MeService) Compose(ctx context.Context, profile *models.Profile) *dto.MeResponse {
	role := profile.Role
	return &dto.MeResponse{
		Profile:        profile,
		Role:           role,
		RoleName:       policy.DisplayName(role),
		Badge:          policy.BadgeFor(role),
		Navigation:     s.navigation(ctx, role),
		WelcomeMessage: policy.Welcome(role),
		QuickActions:   policy.QuickActions(role),
		Capabilities:   policy.Capabilities(role),
	}
}

func (s *MeService) navigation(ctx context.Context, role models.UserRole) []policy.NavItem {
	var cached []policy.NavItem
	value, _, err := s.cache.Remember(ctx, NavigationCacheKey(role), s.navTTL, &cached, func(context.Context) (interface{}, error) {
		items := policy.Navigation(role)
		return &items, nil
	})
	if err != nil {
		return policy.Navigation(role)
	}
	items := *value.(*[]policy.NavItem)
	if len(items) == 0 {
		s.logger.Warn("cached navigation empty", zap.String("role", string(role)))
		return policy.Navigation(role)
	}
	return items
}
