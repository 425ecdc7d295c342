package dto

import (
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
)

// DashboardResponse is the landing page payload.
type DashboardResponse struct {
	Role                models.UserRole             `json:"role"`
	Badge               policy.Badge                `json:"badge"`
	WelcomeMessage      string                      `json:"welcome_message"`
	QuickActions        []policy.QuickAction        `json:"quick_actions"`
	Counts              models.DashboardCounts      `json:"counts"`
	RecentAnnouncements []models.AnnouncementDetail `json:"recent_announcements"`
}

// MeResponse is the session view rendered by GET /me and returned at sign-in.
type MeResponse struct {
	Profile        *models.Profile            `json:"profile"`
	Role           models.UserRole            `json:"role"`
	RoleName       string                     `json:"role_name"`
	Badge          policy.Badge               `json:"badge"`
	Navigation     []policy.NavItem           `json:"navigation"`
	WelcomeMessage string                     `json:"welcome_message"`
	QuickActions   []policy.QuickAction       `json:"quick_actions"`
	Capabilities   map[policy.Capability]bool `json:"capabilities"`
}
