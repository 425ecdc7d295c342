package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type announcementService interface {
	List(ctx context.Context, session *models.Session, query service.AnnouncementQuery) (*service.AnnouncementView, error)
	Create(ctx context.Context, session *models.Session, req service.CreateAnnouncementRequest) (*models.Announcement, error)
}

// AnnouncementHandler exposes the notice board.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(svc announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc}
}

// List godoc
// @Summary List announcements visible to the caller
// @Tags Announcements
// @Produce json
// @Param include_expired query bool false "Include expired announcements"
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	query := service.AnnouncementQuery{IncludeExpired: queryBool(c, "include_expired")}
	query.Page, query.PageSize = pageParams(c)

	view, err := h.service.List(c.Request.Context(), sessionFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, view.Pagination, withMeta(c, map[string]interface{}{
		"can_edit":     view.CanEdit,
		"urgent_count": view.UrgentCount,
	}))
}

// Create godoc
// @Summary Publish an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body service.CreateAnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req service.CreateAnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}
	announcement, err := h.service.Create(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}
