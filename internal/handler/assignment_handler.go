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

type assignmentService interface {
	List(ctx context.Context, session *models.Session, query service.AssignmentQuery) ([]models.AssignmentDetail, *models.Pagination, error)
	Create(ctx context.Context, session *models.Session, req service.CreateAssignmentRequest) (*models.Assignment, error)
	Submit(ctx context.Context, session *models.Session, assignmentID string, req service.SubmitAssignmentRequest) (*models.AssignmentSubmission, error)
	Submissions(ctx context.Context, session *models.Session, assignmentID string) ([]models.SubmissionDetail, error)
	Grade(ctx context.Context, session *models.Session, assignmentID, submissionID string, req service.GradeSubmissionRequest) (*models.AssignmentSubmission, error)
}

// AssignmentHandler exposes homework endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param class_id query string false "Class ID"
// @Param subject_id query string false "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	query := service.AssignmentQuery{
		ClassID:   strings.TrimSpace(c.Query("class_id")),
		SubjectID: strings.TrimSpace(c.Query("subject_id")),
	}
	query.Page, query.PageSize = pageParams(c)

	session := sessionFromContext(c)
	items, pagination, err := h.service.List(c.Request.Context(), session, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination, withMeta(c, map[string]interface{}{
		"can_edit":   session != nil && policy.Can(session.Role, policy.CapCreateAssignments),
		"can_submit": session != nil && policy.Can(session.Role, policy.CapSubmitAssignments),
	}))
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Submit godoc
// @Summary Submit work for an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.SubmitAssignmentRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/submissions [post]
func (h *AssignmentHandler) Submit(c *gin.Context) {
	var req service.SubmitAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	submission, err := h.service.Submit(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Submissions godoc
// @Summary List submissions for an assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/submissions [get]
func (h *AssignmentHandler) Submissions(c *gin.Context) {
	submissions, err := h.service.Submissions(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, nil)
}

// Grade godoc
// @Summary Grade a submission
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param submission_id path string true "Submission ID"
// @Param payload body service.GradeSubmissionRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/submissions/{submission_id}/grade [put]
func (h *AssignmentHandler) Grade(c *gin.Context) {
	var req service.GradeSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}
	submission, err := h.service.Grade(c.Request.Context(), sessionFromContext(c), c.Param("id"), c.Param("submission_id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}
