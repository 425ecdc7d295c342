package models

import (
	"time"

	"github.com/lib/pq"
)

// Announcement is a notice targeted at roles and classes. Empty targets mean everyone.
type Announcement struct {
	ID            string         `db:"id" json:"id"`
	Title         string         `db:"title" json:"title"`
	Content       string         `db:"content" json:"content"`
	CreatedBy     *string        `db:"created_by" json:"created_by,omitempty"`
	ExpiresAt     *time.Time     `db:"expires_at" json:"expires_at,omitempty"`
	IsUrgent      bool           `db:"is_urgent" json:"is_urgent"`
	TargetClasses pq.StringArray `db:"target_classes" json:"target_classes"`
	TargetRoles   pq.StringArray `db:"target_roles" json:"target_roles"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// AnnouncementDetail adds the author name and the expired flag.
type AnnouncementDetail struct {
	Announcement
	AuthorName *string `db:"author_name" json:"author_name,omitempty"`
	IsExpired  bool    `db:"-" json:"is_expired"`
}

// AnnouncementFilter selects announcements visible to one role and class scope.
type AnnouncementFilter struct {
	Role           UserRole
	Scope          ClassScope
	IncludeExpired bool
	Now            time.Time
	Page           int
	PageSize       int
}
