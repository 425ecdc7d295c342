// Package policy maps a role to its navigation, badge and edit affordances.
// Every lookup is keyed by role and falls back to an explicit default for
// values outside the enumeration.
package policy

import "github.com/noah-isme/school-portal-api/internal/models"

// NavItem is one entry of the sidebar menu.
type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Icon  string `json:"icon"`
}

// BadgeVariant is the visual style of the role badge.
type BadgeVariant string

const (
	BadgeDefault   BadgeVariant = "default"
	BadgeSecondary BadgeVariant = "secondary"
	BadgeOutline   BadgeVariant = "outline"
)

// Badge is the role label rendered next to the user's name.
type Badge struct {
	Label   string       `json:"label"`
	Variant BadgeVariant `json:"variant"`
}

// QuickAction is a dashboard shortcut.
type QuickAction struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Icon  string `json:"icon"`
}

// Capability names an edit affordance exposed to the client.
type Capability string

const (
	CapMarkAttendance       Capability = "mark_attendance"
	CapEditTimetable        Capability = "edit_timetable"
	CapManageClasses        Capability = "manage_classes"
	CapManageUsers          Capability = "manage_users"
	CapManageFinance        Capability = "manage_finance"
	CapViewFinance          Capability = "view_finance"
	CapPublishAnnouncements Capability = "publish_announcements"
	CapManageCalendar       Capability = "manage_calendar"
	CapCreateExams          Capability = "create_exams"
	CapRecordResults        Capability = "record_results"
	CapCreateAssignments    Capability = "create_assignments"
	CapSubmitAssignments    Capability = "submit_assignments"
	CapGenerateReports      Capability = "generate_reports"
)

// AllCapabilities lists every capability in a stable order.
var AllCapabilities = []Capability{
	CapMarkAttendance,
	CapEditTimetable,
	CapManageClasses,
	CapManageUsers,
	CapManageFinance,
	CapViewFinance,
	CapPublishAnnouncements,
	CapManageCalendar,
	CapCreateExams,
	CapRecordResults,
	CapCreateAssignments,
	CapSubmitAssignments,
	CapGenerateReports,
}

var dashboardItem = NavItem{Label: "Dashboard", Href: "/dashboard", Icon: "home"}

var teacherNav = []NavItem{
	{Label: "My Classes", Href: "/dashboard/classes", Icon: "users"},
	{Label: "Subjects", Href: "/dashboard/subjects", Icon: "book-open"},
	{Label: "Attendance", Href: "/dashboard/attendance", Icon: "user-check"},
	{Label: "Assessments", Href: "/dashboard/assessments", Icon: "award"},
	{Label: "Timetable", Href: "/dashboard/timetable", Icon: "calendar"},
}

var navigation = map[models.UserRole][]NavItem{
	models.RoleAdmin: {
		{Label: "User Management", Href: "/dashboard/users", Icon: "users"},
		{Label: "Academic Management", Href: "/dashboard/academic", Icon: "book-open"},
		{Label: "School Calendar", Href: "/dashboard/calendar", Icon: "calendar"},
		{Label: "Analytics", Href: "/dashboard/analytics", Icon: "bar-chart"},
		{Label: "Finance", Href: "/dashboard/finance", Icon: "dollar-sign"},
		{Label: "Settings", Href: "/dashboard/settings", Icon: "settings"},
	},
	models.RoleSubAdmin: {
		{Label: "Students & Teachers", Href: "/dashboard/users", Icon: "users"},
		{Label: "Academic", Href: "/dashboard/academic", Icon: "book-open"},
		{Label: "Calendar", Href: "/dashboard/calendar", Icon: "calendar"},
		{Label: "Reports", Href: "/dashboard/analytics", Icon: "bar-chart"},
	},
	models.RoleClassTeacher:  teacherNav,
	models.RoleCommonTeacher: teacherNav,
	models.RoleInternTeacher: teacherNav,
	models.RoleStudent: {
		{Label: "My Subjects", Href: "/dashboard/subjects", Icon: "book-open"},
		{Label: "My Results", Href: "/dashboard/results", Icon: "award"},
		{Label: "Timetable", Href: "/dashboard/timetable", Icon: "calendar"},
		{Label: "Assignments", Href: "/dashboard/assignments", Icon: "clock"},
	},
}

var badges = map[models.UserRole]Badge{
	models.RoleAdmin:         {Label: "Administrator", Variant: BadgeDefault},
	models.RoleSubAdmin:      {Label: "Sub Administrator", Variant: BadgeSecondary},
	models.RoleClassTeacher:  {Label: "Class Teacher", Variant: BadgeDefault},
	models.RoleCommonTeacher: {Label: "Subject Teacher", Variant: BadgeSecondary},
	models.RoleInternTeacher: {Label: "Intern Teacher", Variant: BadgeOutline},
	models.RoleStudent:       {Label: "Student", Variant: BadgeOutline},
}

var welcomes = map[models.UserRole]string{
	models.RoleAdmin:         "Welcome to your administrative dashboard. Manage your school system efficiently.",
	models.RoleSubAdmin:      "Welcome to your sub-administrative dashboard. Oversee academic activities.",
	models.RoleClassTeacher:  "Welcome to your class teacher dashboard. Manage your class effectively.",
	models.RoleCommonTeacher: "Welcome to your teacher dashboard. Track your subjects and students.",
	models.RoleInternTeacher: "Welcome to your intern dashboard. Learn and contribute to education.",
	models.RoleStudent:       "Welcome to your student portal. Track your academic progress.",
}

const defaultWelcome = "Welcome to the Kenya CBC School System."

var teacherActions = []QuickAction{
	{Label: "Mark Attendance", Href: "/attendance", Icon: "clock"},
	{Label: "My Classes", Href: "/classes", Icon: "school"},
	{Label: "Assignments", Href: "/assignments", Icon: "book-open"},
	{Label: "View Timetable", Href: "/timetable", Icon: "calendar"},
}

var quickActions = map[models.UserRole][]QuickAction{
	models.RoleAdmin: {
		{Label: "Manage Students", Href: "/students", Icon: "users"},
		{Label: "View Finance", Href: "/finance", Icon: "dollar-sign"},
		{Label: "School Calendar", Href: "/calendar", Icon: "calendar"},
		{Label: "View Reports", Href: "/reports", Icon: "trending-up"},
	},
	models.RoleSubAdmin: {
		{Label: "Manage Students", Href: "/students", Icon: "users"},
		{Label: "Manage Classes", Href: "/classes", Icon: "school"},
		{Label: "School Calendar", Href: "/calendar", Icon: "calendar"},
		{Label: "View Reports", Href: "/reports", Icon: "trending-up"},
	},
	models.RoleClassTeacher:  teacherActions,
	models.RoleCommonTeacher: teacherActions,
	models.RoleInternTeacher: {
		{Label: "My Classes", Href: "/classes", Icon: "school"},
		{Label: "View Timetable", Href: "/timetable", Icon: "calendar"},
		{Label: "Assignments", Href: "/assignments", Icon: "book-open"},
	},
	models.RoleStudent: {
		{Label: "My Subjects", Href: "/subjects", Icon: "book-open"},
		{Label: "My Assignments", Href: "/assignments", Icon: "clock"},
		{Label: "View Timetable", Href: "/timetable", Icon: "calendar"},
		{Label: "My Exams", Href: "/exams", Icon: "award"},
	},
}

var teacherCaps = []Capability{CapCreateExams, CapRecordResults, CapCreateAssignments}

var capabilities = map[models.UserRole][]Capability{
	models.RoleAdmin: {
		CapEditTimetable, CapManageClasses, CapManageUsers, CapManageFinance, CapViewFinance,
		CapPublishAnnouncements, CapManageCalendar, CapCreateExams, CapRecordResults, CapGenerateReports,
	},
	models.RoleSubAdmin: {
		CapEditTimetable, CapManageClasses, CapManageUsers, CapViewFinance,
		CapPublishAnnouncements, CapManageCalendar, CapCreateExams, CapGenerateReports,
	},
	models.RoleClassTeacher:  append([]Capability{CapMarkAttendance}, teacherCaps...),
	models.RoleCommonTeacher: teacherCaps,
	models.RoleInternTeacher: teacherCaps,
	models.RoleStudent:       {CapViewFinance, CapSubmitAssignments},
}

// Navigation returns the ordered menu for a role. The dashboard entry is always first.
func Navigation(role models.UserRole) []NavItem {
	extra := navigation[role]
	items := make([]NavItem, 0, len(extra)+1)
	items = append(items, dashboardItem)
	return append(items, extra...)
}

// BadgeFor returns the role badge. Unknown roles show the raw value in outline style.
func BadgeFor(role models.UserRole) Badge {
	if badge, ok := badges[role]; ok {
		return badge
	}
	return Badge{Label: string(role), Variant: BadgeOutline}
}

// DisplayName is the human label of a role.
func DisplayName(role models.UserRole) string {
	return BadgeFor(role).Label
}

// Welcome returns the dashboard greeting for a role.
func Welcome(role models.UserRole) string {
	if msg, ok := welcomes[role]; ok {
		return msg
	}
	return defaultWelcome
}

// QuickActions returns dashboard shortcuts for a role.
func QuickActions(role models.UserRole) []QuickAction {
	actions := quickActions[role]
	out := make([]QuickAction, len(actions))
	copy(out, actions)
	return out
}

// Can reports whether the role holds the capability.
func Can(role models.UserRole, capability Capability) bool {
	for _, c := range capabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities returns every capability with its grant for the role.
func Capabilities(role models.UserRole) map[Capability]bool {
	out := make(map[Capability]bool, len(AllCapabilities))
	for _, c := range AllCapabilities {
		out[c] = Can(role, c)
	}
	return out
}
