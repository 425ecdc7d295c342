package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type subjectService interface {
	List(ctx context.Context, session *models.Session, query service.SubjectQuery) ([]models.Subject, *models.Pagination, error)
	Create(ctx context.Context, session *models.Session, req service.CreateSubjectRequest) (*models.Subject, error)
	Assign(ctx context.Context, session *models.Session, req service.AssignSubjectRequest) (*models.TeacherSubject, error)
}

// SubjectHandler exposes CBC subject endpoints.
type SubjectHandler struct {
	service subjectService
}

// NewSubjectHandler constructs the handler.
func NewSubjectHandler(svc subjectService) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

// List godoc
// @Summary List subjects
// @Tags Subjects
// @Produce json
// @Param grade_level query int false "Grade level"
// @Param learning_area query string false "Learning area"
// @Param search query string false "Name or code"
// @Param mine query bool false "Only subjects the caller teaches"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	query := service.SubjectQuery{
		LearningArea: strings.TrimSpace(c.Query("learning_area")),
		Search:       strings.TrimSpace(c.Query("search")),
		Mine:         queryBool(c, "mine"),
	}
	var err error
	if query.GradeLevel, err = queryIntPtr(c, "grade_level"); err != nil {
		response.Error(c, err)
		return
	}
	query.Page, query.PageSize = pageParams(c)

	session := sessionFromContext(c)
	subjects, pagination, err := h.service.List(c.Request.Context(), session, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, pagination, withMeta(c, map[string]interface{}{
		"can_edit": session != nil && policy.Can(session.Role, policy.CapManageClasses),
	}))
}

// Create godoc
// @Summary Create subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body service.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req service.CreateSubjectRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.service.Create(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Assign godoc
// @Summary Assign a teacher to teach a subject in a class
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body service.AssignSubjectRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /subjects/assign [post]
func (h *SubjectHandler) Assign(c *gin.Context) {
	var req service.AssignSubjectRequest
	if !bindJSON(c, &req) {
		return
	}
	link, err := h.service.Assign(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}
