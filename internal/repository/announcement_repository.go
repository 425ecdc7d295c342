package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// announcementConditions keeps rows whose targets are empty or match the
// caller. Administrative roles see every announcement.
func announcementConditions(filter models.AnnouncementFilter) conditions {
	var c conditions
	if !filter.Role.IsAdministrative() {
		c.add("(cardinality(a.target_roles) = 0 OR $%d = ANY(a.target_roles::text[]))", string(filter.Role))
	}
	if filter.Scope.Restricted {
		c.add("(cardinality(a.target_classes) = 0 OR a.target_classes && $%d::uuid[])", pq.Array(filter.Scope.ClassIDs))
	}
	if !filter.IncludeExpired {
		now := filter.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		c.add("(a.expires_at IS NULL OR a.expires_at > $%d)", now)
	}
	return c
}

// List returns announcements visible to the role and scope, newest first.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.AnnouncementDetail, int, error) {
	c := announcementConditions(filter)
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT a.id, a.title, a.content, a.created_by, a.expires_at, a.is_urgent, a.target_classes, a.target_roles, a.created_at,
    p.full_name AS author_name
FROM announcements a
LEFT JOIN profiles p ON p.id = a.created_by%s
ORDER BY a.created_at DESC
LIMIT %d OFFSET %d`, c.where(), size, offset)
	var announcements []models.AnnouncementDetail
	if err := r.db.SelectContext(ctx, &announcements, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM announcements a"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	return announcements, total, nil
}

// CountUrgent counts visible urgent announcements that have not expired.
func (r *AnnouncementRepository) CountUrgent(ctx context.Context, filter models.AnnouncementFilter) (int, error) {
	filter.IncludeExpired = false
	c := announcementConditions(filter)
	c.raw("a.is_urgent")
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM announcements a"+c.where(), c.args...); err != nil {
		return 0, fmt.Errorf("count urgent announcements: %w", err)
	}
	return total, nil
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	announcement.CreatedAt = time.Now().UTC()
	if announcement.TargetClasses == nil {
		announcement.TargetClasses = pq.StringArray{}
	}
	if announcement.TargetRoles == nil {
		announcement.TargetRoles = pq.StringArray{}
	}
	const query = `INSERT INTO announcements (id, title, content, created_by, expires_at, is_urgent, target_classes, target_roles, created_at)
VALUES (:id, :title, :content, :created_by, :expires_at, :is_urgent, :target_classes, :target_roles, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}
