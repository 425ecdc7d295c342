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

type timetableService interface {
	List(ctx context.Context, session *models.Session, query service.TimetableQuery) (*service.TimetableView, error)
	Create(ctx context.Context, session *models.Session, req service.TimetableSlotRequest) (*models.TimetableDetail, error)
	Update(ctx context.Context, session *models.Session, id string, req service.TimetableSlotRequest) (*models.TimetableDetail, error)
	Delete(ctx context.Context, session *models.Session, id string) error
}

// TimetableHandler exposes weekly timetable endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// List godoc
// @Summary List timetable slots
// @Tags Timetable
// @Produce json
// @Param class_id query string false "Class ID"
// @Param grade_level query int false "Grade level"
// @Param stream query string false "Stream"
// @Param day_of_week query int false "Day of week (1-7)"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	query := service.TimetableQuery{
		ClassID: strings.TrimSpace(c.Query("class_id")),
		Stream:  strings.TrimSpace(c.Query("stream")),
	}
	var err error
	if query.GradeLevel, err = queryIntPtr(c, "grade_level"); err != nil {
		response.Error(c, err)
		return
	}
	if query.DayOfWeek, err = queryIntPtr(c, "day_of_week"); err != nil {
		response.Error(c, err)
		return
	}
	query.Page, query.PageSize = pageParams(c)

	view, err := h.service.List(c.Request.Context(), sessionFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, view.Pagination, withMeta(c, map[string]interface{}{
		"can_edit": view.CanEdit,
	}))
}

// Create godoc
// @Summary Create timetable slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.TimetableSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req service.TimetableSlotRequest
	if !bindJSON(c, &req) {
		return
	}
	slot, err := h.service.Create(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update timetable slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body service.TimetableSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req service.TimetableSlotRequest
	if !bindJSON(c, &req) {
		return
	}
	slot, err := h.service.Update(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete timetable slot
// @Tags Timetable
// @Param id path string true "Slot ID"
// @Success 204
// @Router /timetable/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
