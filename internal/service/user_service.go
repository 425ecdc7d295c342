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

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error)
	UpdateContact(ctx context.Context, profile *models.Profile) error
	UpdateAccess(ctx context.Context, profile *models.Profile) error
}

type classOwnershipCounter interface {
	CountOwnedBy(ctx context.Context, teacherID string) (int, error)
}

// UserQuery holds the user directory filters.
type UserQuery struct {
	Role     string
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// UpdateProfileRequest carries the self-service profile fields.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=2,max=150"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Address   *string `json:"address" validate:"omitempty,max=300"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// UpdateUserRequest changes the role or active flag of a profile.
type UpdateUserRequest struct {
	Role     *string `json:"role" validate:"omitempty,user_role"`
	IsActive *bool   `json:"is_active"`
}

// subAdminVisibleRoles are the profiles a sub admin may browse.
var subAdminVisibleRoles = []models.UserRole{
	models.RoleClassTeacher,
	models.RoleCommonTeacher,
	models.RoleInternTeacher,
	models.RoleStudent,
}

// UserService manages profiles: self-service edits and the admin directory.
type UserService struct {
	profiles  profileRepository
	classes   classOwnershipCounter
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(profiles profileRepository, classes classOwnershipCounter, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &UserService{profiles: profiles, classes: classes, audit: audit, validator: validate, logger: logger}
}

// UpdateOwnProfile applies the self-service fields. Role and status are never touched.
func (s *UserService) UpdateOwnProfile(ctx context.Context, session *models.Session, req UpdateProfileRequest) (*models.Profile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid profile payload")
	}
	profile, err := s.profiles.FindByID(ctx, session.ProfileID)
	if err != nil {
		return nil, lookupError(err, "profile not found", "failed to fetch profile")
	}
	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		profile.Phone = req.Phone
	}
	if req.Address != nil {
		profile.Address = req.Address
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}
	if err := s.profiles.UpdateContact(ctx, profile); err != nil {
		return nil, internalError(err, "failed to update profile")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionProfileUpdate, "profile", profile.ID, req)
	return profile, nil
}

// List returns the user directory. Sub admins only see teaching and student profiles.
func (s *UserService) List(ctx context.Context, session *models.Session, query UserQuery) ([]models.Profile, *models.Pagination, error) {
	if err := requireSession(session); err != nil {
		return nil, nil, err
	}
	if !policy.Can(session.Role, policy.CapManageUsers) {
		return nil, nil, forbidden()
	}

	var roles []models.UserRole
	if query.Role != "" {
		roles = []models.UserRole{models.UserRole(query.Role)}
	}
	if session.Role == models.RoleSubAdmin {
		roles = intersectRoles(roles, subAdminVisibleRoles)
		if len(roles) == 0 {
			return []models.Profile{}, paginate(query.Page, query.PageSize, 0), nil
		}
	}

	profiles, total, err := s.profiles.List(ctx, models.ProfileFilter{
		Roles:    roles,
		Active:   query.Active,
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to fetch users")
	}
	return profiles, paginate(query.Page, query.PageSize, total), nil
}

// Update changes the role or active flag. A profile that owns a class cannot
// leave the teaching roles.
func (s *UserService) Update(ctx context.Context, session *models.Session, id string, req UpdateUserRequest) (*models.Profile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if session.Role != models.RoleAdmin {
		return nil, forbidden()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid user payload")
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to fetch user")
	}
	before := profile.Role

	if req.Role != nil {
		next := models.UserRole(*req.Role)
		if before.IsTeaching() && !next.IsTeaching() {
			owned, err := s.classes.CountOwnedBy(ctx, profile.ID)
			if err != nil {
				return nil, internalError(err, "failed to update user")
			}
			if owned > 0 {
				return nil, appErrors.Clone(appErrors.ErrConflict, "profile still owns classes")
			}
		}
		profile.Role = next
	}
	if req.IsActive != nil {
		profile.IsActive = *req.IsActive
	}
	if err := s.profiles.UpdateAccess(ctx, profile); err != nil {
		return nil, internalError(err, "failed to update user")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionUserUpdate, "profile", profile.ID,
		map[string]interface{}{"role_before": before, "role": profile.Role, "is_active": profile.IsActive})
	return profile, nil
}

// intersectRoles keeps the requested roles that are allowed. No request means all allowed roles.
func intersectRoles(requested, allowed []models.UserRole) []models.UserRole {
	if len(requested) == 0 {
		out := make([]models.UserRole, len(allowed))
		copy(out, allowed)
		return out
	}
	var out []models.UserRole
	for _, r := range requested {
		for _, a := range allowed {
			if r == a {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
