package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
)

type attendanceServiceFake struct {
	lastQuery service.AttendanceQuery
	lastMark  service.MarkAttendanceRequest
	view      *service.AttendanceView
}

func (f *attendanceServiceFake) List(_ context.Context, _ *models.Session, query service.AttendanceQuery) (*service.AttendanceView, error) {
	f.lastQuery = query
	return f.view, nil
}

func (f *attendanceServiceFake) Mark(_ context.Context, session *models.Session, req service.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	f.lastMark = req
	return &models.AttendanceRecord{StudentID: req.StudentID, IsPresent: *req.IsPresent}, nil
}

func (f *attendanceServiceFake) BulkMark(_ context.Context, _ *models.Session, req service.BulkAttendanceRequest) ([]models.AttendanceRecord, error) {
	return make([]models.AttendanceRecord, len(req.Records)), nil
}

func TestAttendanceHandlerListParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &attendanceServiceFake{view: &service.AttendanceView{
		Items:      []models.AttendanceDetail{},
		Stats:      models.AttendanceStats{Total: 4, Present: 3, Absent: 1, Rate: 75},
		Pagination: &models.Pagination{Page: 2, PageSize: 10, TotalCount: 4},
		CanEdit:    true,
	}}
	handler := NewAttendanceHandler(fake)

	c, w := newGinContext(http.MethodGet, "/attendance?class_id=c1&date=2024-03-04&page=2&page_size=10", nil)
	withSession(c, models.RoleClassTeacher)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", fake.lastQuery.ClassID)
	require.NotNil(t, fake.lastQuery.Date)
	assert.Equal(t, "2024-03-04", fake.lastQuery.Date.Format(dateLayout))
	assert.Equal(t, 2, fake.lastQuery.Page)
	assert.Equal(t, 10, fake.lastQuery.PageSize)

	envelope := decodeEnvelope(t, w)
	assert.Equal(t, true, envelope.Meta["can_edit"])
	stats := envelope.Data["stats"].(map[string]interface{})
	assert.EqualValues(t, 75, stats["rate"])
}

func TestAttendanceHandlerRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &attendanceServiceFake{}
	handler := NewAttendanceHandler(fake)

	c, w := newGinContext(http.MethodGet, "/attendance?date=04-03-2024", nil)
	withSession(c, models.RoleAdmin)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, fake.lastQuery.ClassID)
}

func TestAttendanceHandlerMark(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &attendanceServiceFake{}
	handler := NewAttendanceHandler(fake)

	c, w := newGinContext(http.MethodPost, "/attendance", []byte(`{"student_id":"s1","is_present":false}`))
	withSession(c, models.RoleClassTeacher)
	handler.Mark(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", fake.lastMark.StudentID)
	require.NotNil(t, fake.lastMark.IsPresent)
	assert.False(t, *fake.lastMark.IsPresent)

	c, w = newGinContext(http.MethodPost, "/attendance", []byte(`not json`))
	handler.Mark(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerBulkMarkReportsCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttendanceHandler(&attendanceServiceFake{})

	c, w := newGinContext(http.MethodPost, "/attendance/bulk", []byte(`{"class_id":"c1","records":[{"student_id":"s1","is_present":true},{"student_id":"s2","is_present":true}]}`))
	withSession(c, models.RoleClassTeacher)
	handler.BulkMark(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.EqualValues(t, 2, envelope.Meta["saved"])
}
