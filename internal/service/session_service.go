package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type sessionProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

type sessionStudentRepository interface {
	FindByProfileID(ctx context.Context, profileID string) (*models.Student, error)
}

// SessionService turns verified token claims into the per-request Session.
type SessionService struct {
	profiles sessionProfileRepository
	students sessionStudentRepository
	logger   *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(profiles sessionProfileRepository, students sessionStudentRepository, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{profiles: profiles, students: students, logger: logger}
}

// Resolve loads the profile named by the claims. A missing or inactive profile
// yields UNAUTHORIZED so that callers never query on behalf of a stale token.
func (s *SessionService) Resolve(ctx context.Context, claims *models.JWTClaims) (*models.Session, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}

	var (
		profile *models.Profile
		err     error
	)
	if claims.ProfileID != "" {
		profile, err = s.profiles.FindByID(ctx, claims.ProfileID)
	} else {
		profile, err = s.profiles.FindByUserID(ctx, claims.UserID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch profile")
	}
	if profile.UserID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "profile does not belong to identity")
	}
	if !profile.IsActive {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "profile is inactive")
	}
	return s.Build(ctx, profile)
}

// Build assembles a session for an already loaded profile. Students get their
// student row and class attached.
func (s *SessionService) Build(ctx context.Context, profile *models.Profile) (*models.Session, error) {
	session := &models.Session{
		UserID:    profile.UserID,
		ProfileID: profile.ID,
		Role:      profile.Role,
		Email:     profile.Email,
		FullName:  profile.FullName,
	}
	if profile.Role != models.RoleStudent {
		return session, nil
	}

	student, err := s.students.FindByProfileID(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Freshly signed-up students have no enrollment yet.
			return session, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	session.StudentID = &student.ID
	session.ClassID = student.ClassID
	return session, nil
}
