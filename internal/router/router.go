// Package router maps the HTTP surface onto the handlers.
package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/school-portal-api/internal/handler"
	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
)

// Handlers bundles every HTTP handler the API exposes.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Dashboard     *handler.DashboardHandler
	Attendance    *handler.AttendanceHandler
	Timetable     *handler.TimetableHandler
	Classes       *handler.ClassHandler
	Students      *handler.StudentHandler
	Subjects      *handler.SubjectHandler
	Exams         *handler.ExamHandler
	Assignments   *handler.AssignmentHandler
	Finance       *handler.FinanceHandler
	Announcements *handler.AnnouncementHandler
	Calendar      *handler.CalendarHandler
	Reports       *handler.ReportHandler
	Metrics       *handler.MetricsHandler
}

// Options controls mounting.
type Options struct {
	APIPrefix string
	// Auth resolves the caller's session. Production passes middleware.JWT.
	Auth    gin.HandlerFunc
	Swagger bool
}

// Register mounts platform endpoints at the root and the API under the prefix.
func Register(r *gin.Engine, h Handlers, opts Options) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if opts.Swagger {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta(), middleware.AuditContext())

	public := api.Group("/auth")
	public.POST("/sign-up", h.Auth.SignUp)
	public.POST("/verify", h.Auth.VerifyEmail)
	public.POST("/sign-in", h.Auth.SignIn)
	public.POST("/refresh", h.Auth.Refresh)
	api.GET("/export/:token", h.Reports.Download)

	secured := api.Group("")
	secured.Use(opts.Auth)

	secured.POST("/auth/sign-out", h.Auth.SignOut)
	secured.PUT("/auth/password", h.Auth.ChangePassword)

	secured.GET("/me", h.Users.Me)
	secured.PUT("/me/profile", h.Users.UpdateProfile)
	secured.GET("/dashboard", h.Dashboard.Summary)

	users := secured.Group("/users")
	users.GET("", middleware.RequireCapability(policy.CapManageUsers), h.Users.List)
	users.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.Users.Update)

	attendance := secured.Group("/attendance")
	attendance.GET("", h.Attendance.List)
	attendance.POST("", middleware.RequireCapability(policy.CapMarkAttendance), h.Attendance.Mark)
	attendance.POST("/bulk", middleware.RequireCapability(policy.CapMarkAttendance), h.Attendance.BulkMark)

	timetable := secured.Group("/timetable")
	timetable.GET("", h.Timetable.List)
	timetable.POST("", middleware.RequireCapability(policy.CapEditTimetable), h.Timetable.Create)
	timetable.PUT("/:id", middleware.RequireCapability(policy.CapEditTimetable), h.Timetable.Update)
	timetable.DELETE("/:id", middleware.RequireCapability(policy.CapEditTimetable), h.Timetable.Delete)

	classes := secured.Group("/classes")
	classes.GET("", h.Classes.List)
	classes.GET("/teachers", middleware.RequireCapability(policy.CapManageClasses), h.Classes.Teachers)
	classes.GET("/:id", h.Classes.Get)
	classes.POST("", middleware.RequireCapability(policy.CapManageClasses), h.Classes.Create)
	classes.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.Classes.Update)
	classes.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.Classes.Delete)

	students := secured.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", middleware.RequireCapability(policy.CapManageClasses), h.Students.Create)
	students.PUT("/:id", middleware.RequireCapability(policy.CapManageClasses), h.Students.Update)

	subjects := secured.Group("/subjects")
	subjects.GET("", h.Subjects.List)
	subjects.POST("", middleware.RequireCapability(policy.CapManageClasses), h.Subjects.Create)
	subjects.POST("/assign", middleware.RequireCapability(policy.CapManageClasses), h.Subjects.Assign)

	exams := secured.Group("/exams")
	exams.GET("", h.Exams.List)
	exams.POST("", middleware.RequireCapability(policy.CapCreateExams), h.Exams.Create)
	exams.GET("/results", h.Exams.Results)
	exams.PUT("/results", middleware.RequireCapability(policy.CapRecordResults), h.Exams.UpsertResult)

	assignments := secured.Group("/assignments")
	assignments.GET("", h.Assignments.List)
	assignments.POST("", middleware.RequireCapability(policy.CapCreateAssignments), h.Assignments.Create)
	assignments.POST("/:id/submissions", middleware.RequireCapability(policy.CapSubmitAssignments), h.Assignments.Submit)
	assignments.GET("/:id/submissions", h.Assignments.Submissions)
	assignments.PUT("/:id/submissions/:submission_id/grade", h.Assignments.Grade)

	finance := secured.Group("/finance")
	finance.GET("", middleware.RequireCapability(policy.CapViewFinance), h.Finance.List)
	finance.POST("", middleware.RequireCapability(policy.CapManageFinance), h.Finance.Create)
	finance.PUT("/:id/status", middleware.RequireCapability(policy.CapManageFinance), h.Finance.UpdateStatus)

	announcements := secured.Group("/announcements")
	announcements.GET("", h.Announcements.List)
	announcements.POST("", middleware.RequireCapability(policy.CapPublishAnnouncements), h.Announcements.Create)

	calendar := secured.Group("/calendar")
	calendar.GET("", h.Calendar.List)
	calendar.POST("", middleware.RequireCapability(policy.CapManageCalendar), h.Calendar.Create)

	reports := secured.Group("/reports")
	reports.POST("", middleware.RequireCapability(policy.CapGenerateReports), h.Reports.Generate)
	reports.GET("", middleware.RequireCapability(policy.CapGenerateReports), h.Reports.List)
	reports.GET("/:id", h.Reports.Status)

	if h.Metrics != nil {
		secured.GET("/admin/metrics", middleware.RequireRoles(models.RoleAdmin), h.Metrics.System)
	}
}
