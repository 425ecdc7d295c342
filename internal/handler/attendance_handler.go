package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type attendanceService interface {
	List(ctx context.Context, session *models.Session, query service.AttendanceQuery) (*service.AttendanceView, error)
	Mark(ctx context.Context, session *models.Session, req service.MarkAttendanceRequest) (*models.AttendanceRecord, error)
	BulkMark(ctx context.Context, session *models.Session, req service.BulkAttendanceRequest) ([]models.AttendanceRecord, error)
}

// AttendanceHandler exposes daily attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// List godoc
// @Summary List attendance records
// @Description Rows are limited to the caller's classes. meta.can_edit reports whether the caller may mark attendance.
// @Tags Attendance
// @Produce json
// @Param class_id query string false "Class ID"
// @Param student_id query string false "Student ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param date_from query string false "Range start (YYYY-MM-DD)"
// @Param date_to query string false "Range end (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	query := service.AttendanceQuery{
		ClassID:   strings.TrimSpace(c.Query("class_id")),
		StudentID: strings.TrimSpace(c.Query("student_id")),
	}
	var err error
	if query.Date, err = queryDate(c, "date"); err != nil {
		response.Error(c, err)
		return
	}
	if query.DateFrom, err = queryDate(c, "date_from"); err != nil {
		response.Error(c, err)
		return
	}
	if query.DateTo, err = queryDate(c, "date_to"); err != nil {
		response.Error(c, err)
		return
	}
	query.Page, query.PageSize = pageParams(c)

	view, err := h.service.List(c.Request.Context(), sessionFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, view.Pagination, withMeta(c, map[string]interface{}{
		"can_edit": view.CanEdit,
	}))
}

// Mark godoc
// @Summary Mark attendance for one student
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.service.Mark(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// BulkMark godoc
// @Summary Mark attendance for a whole class
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.BulkAttendanceRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	var req service.BulkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	records, err := h.service.BulkMark(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil, map[string]interface{}{"saved": len(records)})
}
