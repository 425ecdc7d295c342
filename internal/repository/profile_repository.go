package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const profileColumns = `id, user_id, email, full_name, role, phone, address, avatar_url, is_active, created_at, updated_at`

// ProfileRepository reads and updates school profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID returns a profile by identifier.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

// FindByUserID returns the profile attached to an identity.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by user: %w", err)
	}
	return &profile, nil
}

// List returns profiles matching the filter with total count.
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	var c conditions
	if len(filter.Roles) > 0 {
		c.add("role::text = ANY($%d)", pq.Array(roleStrings(filter.Roles)))
	}
	if filter.Active != nil {
		c.add("is_active = $%d", *filter.Active)
	}
	if filter.Search != "" {
		c.args = append(c.args, likePattern(filter.Search))
		c.clauses = append(c.clauses, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(full_name) LIKE $%d)", len(c.args), len(c.args)))
	}

	allowedSorts := map[string]bool{"full_name": true, "email": true, "role": true, "created_at": true}
	sortBy := filter.SortBy
	if !allowedSorts[sortBy] {
		sortBy = "full_name"
	}
	order := sortOrder(filter.SortOrder, "ASC")
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM profiles%s ORDER BY %s %s LIMIT %d OFFSET %d", profileColumns, c.where(), sortBy, order, size, offset)
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM profiles"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}
	return profiles, total, nil
}

// CountByRoles counts active profiles holding any of the roles.
func (r *ProfileRepository) CountByRoles(ctx context.Context, roles []models.UserRole) (int, error) {
	const query = `SELECT COUNT(*) FROM profiles WHERE is_active AND role::text = ANY($1)`
	var total int
	if err := r.db.GetContext(ctx, &total, query, pq.Array(roleStrings(roles))); err != nil {
		return 0, fmt.Errorf("count profiles by role: %w", err)
	}
	return total, nil
}

// UpdateContact updates the self-service fields of a profile.
func (r *ProfileRepository) UpdateContact(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET full_name = :full_name, phone = :phone, address = :address, avatar_url = :avatar_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// UpdateAccess updates the role and active flag of a profile.
func (r *ProfileRepository) UpdateAccess(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET role = :role, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile access: %w", err)
	}
	return nil
}
