package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type scopeClassRepository interface {
	TeacherClassIDs(ctx context.Context, teacherID string) ([]string, error)
}

// ScopeService computes which classes and students a session may read.
type ScopeService struct {
	classes scopeClassRepository
	logger  *zap.Logger
}

// NewScopeService constructs the service.
func NewScopeService(classes scopeClassRepository, logger *zap.Logger) *ScopeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeService{classes: classes, logger: logger}
}

// Resolve returns the read scope for the session. Unknown roles get an empty
// restricted scope.
func (s *ScopeService) Resolve(ctx context.Context, session *models.Session) (models.Scope, error) {
	if session == nil {
		return models.Scope{}, appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	switch {
	case session.Role.IsAdministrative():
		return models.Scope{Unrestricted: true}, nil
	case session.Role.IsTeaching():
		ids, err := s.classes.TeacherClassIDs(ctx, session.ProfileID)
		if err != nil {
			return models.Scope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch classes")
		}
		if ids == nil {
			ids = []string{}
		}
		return models.Scope{ClassIDs: ids}, nil
	case session.Role == models.RoleStudent:
		scope := models.Scope{ClassIDs: []string{}, Student: true}
		if session.StudentID != nil {
			scope.StudentID = *session.StudentID
		}
		if session.ClassID != nil {
			scope.ClassIDs = []string{*session.ClassID}
		}
		return scope, nil
	default:
		s.logger.Warn("unrecognized role in session", zap.String("role", string(session.Role)))
		return models.Scope{ClassIDs: []string{}}, nil
	}
}
