package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type calendarService interface {
	List(ctx context.Context, session *models.Session, query service.CalendarQuery) (*service.CalendarView, error)
	Create(ctx context.Context, session *models.Session, req service.CreateEventRequest) (*models.CalendarEvent, error)
}

// CalendarHandler exposes school calendar endpoints.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc calendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// List godoc
// @Summary List calendar events
// @Tags Calendar
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param upcoming query bool false "Only events from today on"
// @Success 200 {object} response.Envelope
// @Router /calendar [get]
func (h *CalendarHandler) List(c *gin.Context) {
	query := service.CalendarQuery{Upcoming: queryBool(c, "upcoming")}
	var err error
	if query.From, err = queryDate(c, "from"); err != nil {
		response.Error(c, err)
		return
	}
	if query.To, err = queryDate(c, "to"); err != nil {
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
// @Summary Create calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body service.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /calendar [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	var req service.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.service.Create(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}
