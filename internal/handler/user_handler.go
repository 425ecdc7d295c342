package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type userService interface {
	UpdateOwnProfile(ctx context.Context, session *models.Session, req service.UpdateProfileRequest) (*models.Profile, error)
	List(ctx context.Context, session *models.Session, query service.UserQuery) ([]models.Profile, *models.Pagination, error)
	Update(ctx context.Context, session *models.Session, id string, req service.UpdateUserRequest) (*models.Profile, error)
}

type meService interface {
	Get(ctx context.Context, session *models.Session) (*dto.MeResponse, error)
}

// UserHandler handles profile and user administration endpoints.
type UserHandler struct {
	service userService
	me      meService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService, me meService) *UserHandler {
	return &UserHandler{service: svc, me: me}
}

// Me godoc
// @Summary Current session view
// @Description Profile, role badge, navigation, welcome message, quick actions and capabilities for the caller.
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	view, err := h.me.Get(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body service.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /me/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.service.UpdateOwnProfile(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// List godoc
// @Summary List users
// @Description List profiles with pagination and filtering
// @Tags Users
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param role query string false "Role filter"
// @Param active query bool false "Active filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	query := service.UserQuery{
		Role:   strings.TrimSpace(c.Query("role")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if active := c.Query("active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			query.Active = &val
		}
	}
	query.Page, query.PageSize = pageParams(c)

	users, pagination, err := h.service.List(c.Request.Context(), sessionFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Update godoc
// @Summary Update user role or status
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param payload body service.UpdateUserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.service.Update(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
