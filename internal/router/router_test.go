package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/handler"
	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// testRoleAuth builds the session from the X-Test-Role header.
func testRoleAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetHeader("X-Test-Role")
		if role == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Set(middleware.ContextSessionKey, &models.Session{UserID: "u-" + role, ProfileID: "p-" + role, Role: models.UserRole(role)})
		c.Next()
	}
}

type attendanceStub struct{ marked int }

func (s *attendanceStub) List(_ context.Context, session *models.Session, _ service.AttendanceQuery) (*service.AttendanceView, error) {
	return &service.AttendanceView{Items: []models.AttendanceDetail{}, CanEdit: session.Role == models.RoleClassTeacher}, nil
}

func (s *attendanceStub) Mark(_ context.Context, _ *models.Session, req service.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	s.marked++
	return &models.AttendanceRecord{StudentID: req.StudentID}, nil
}

func (s *attendanceStub) BulkMark(context.Context, *models.Session, service.BulkAttendanceRequest) ([]models.AttendanceRecord, error) {
	return nil, nil
}

type financeStub struct{}

func (financeStub) List(context.Context, *models.Session, service.FinanceQuery) (*service.FinanceView, error) {
	return &service.FinanceView{Items: []models.FinanceDetail{}}, nil
}

func (financeStub) Create(context.Context, *models.Session, service.CreateTransactionRequest) (*models.FinanceTransaction, error) {
	return &models.FinanceTransaction{ID: "tx"}, nil
}

func (financeStub) UpdateStatus(context.Context, *models.Session, string, service.UpdatePaymentStatusRequest) (*models.FinanceTransaction, error) {
	return &models.FinanceTransaction{ID: "tx"}, nil
}

func newTestEngine(attendance *attendanceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, Handlers{
		Auth:          handler.NewAuthHandler(nil),
		Users:         handler.NewUserHandler(nil, nil),
		Dashboard:     handler.NewDashboardHandler(nil),
		Attendance:    handler.NewAttendanceHandler(attendance),
		Timetable:     handler.NewTimetableHandler(nil),
		Classes:       handler.NewClassHandler(nil),
		Students:      handler.NewStudentHandler(nil),
		Subjects:      handler.NewSubjectHandler(nil),
		Exams:         handler.NewExamHandler(nil),
		Assignments:   handler.NewAssignmentHandler(nil),
		Finance:       handler.NewFinanceHandler(financeStub{}),
		Announcements: handler.NewAnnouncementHandler(nil),
		Calendar:      handler.NewCalendarHandler(nil),
		Reports:       handler.NewReportHandler(nil),
		Metrics:       handler.NewMetricsHandler(nil, nil),
	}, Options{APIPrefix: "/api/v1", Auth: testRoleAuth()})
	return r
}

func perform(r http.Handler, method, path, role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterRequiresSession(t *testing.T) {
	r := newTestEngine(&attendanceStub{})

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/api/v1/attendance", "", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/v1/attendance", "student", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/health", "", "").Code)
}

func TestRouterOnlyClassTeacherMarksAttendance(t *testing.T) {
	stub := &attendanceStub{}
	r := newTestEngine(stub)
	payload := `{"student_id":"s1","is_present":true}`

	for _, role := range []string{"admin", "sub_admin", "common_teacher", "intern_teacher", "student"} {
		w := perform(r, http.MethodPost, "/api/v1/attendance", role, payload)
		assert.Equal(t, http.StatusForbidden, w.Code, role)
	}
	w := perform(r, http.MethodPost, "/api/v1/attendance", "class_teacher", payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, stub.marked)
}

func TestRouterFinanceGates(t *testing.T) {
	r := newTestEngine(&attendanceStub{})

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/v1/finance", "student", "").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/api/v1/finance", "class_teacher", "").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPost, "/api/v1/finance", "sub_admin", `{}`).Code)
	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/api/v1/finance", "admin", `{"student_id":"s"}`).Code)
}

func TestRouterResponseMeta(t *testing.T) {
	r := newTestEngine(&attendanceStub{})

	w := perform(r, http.MethodGet, "/api/v1/attendance", "class_teacher", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"can_edit":true`)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
