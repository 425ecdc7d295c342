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

type examService interface {
	List(ctx context.Context, session *models.Session, query service.ExamQuery) ([]models.ExamDetail, *models.Pagination, error)
	Create(ctx context.Context, session *models.Session, req service.CreateExamRequest) (*models.Exam, error)
	Results(ctx context.Context, session *models.Session, query service.ExamResultQuery) ([]models.ExamResultDetail, *models.Pagination, error)
	UpsertResult(ctx context.Context, session *models.Session, req service.UpsertResultRequest) (*models.ExamResult, error)
}

// ExamHandler exposes exam and result endpoints.
type ExamHandler struct {
	service examService
}

// NewExamHandler constructs the handler.
func NewExamHandler(svc examService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// List godoc
// @Summary List exams
// @Description Every row carries a status derived from the exam date.
// @Tags Exams
// @Produce json
// @Param class_id query string false "Class ID"
// @Param subject_id query string false "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	query := service.ExamQuery{
		ClassID:   strings.TrimSpace(c.Query("class_id")),
		SubjectID: strings.TrimSpace(c.Query("subject_id")),
	}
	query.Page, query.PageSize = pageParams(c)

	session := sessionFromContext(c)
	exams, pagination, err := h.service.List(c.Request.Context(), session, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, pagination, withMeta(c, map[string]interface{}{
		"can_edit": session != nil && policy.Can(session.Role, policy.CapCreateExams),
	}))
}

// Create godoc
// @Summary Schedule an exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body service.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req service.CreateExamRequest
	if !bindJSON(c, &req) {
		return
	}
	exam, err := h.service.Create(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Results godoc
// @Summary List exam results
// @Description Students only ever receive their own rows.
// @Tags Exams
// @Produce json
// @Param exam_id query string false "Exam ID"
// @Param student_id query string false "Student ID"
// @Success 200 {object} response.Envelope
// @Router /exams/results [get]
func (h *ExamHandler) Results(c *gin.Context) {
	query := service.ExamResultQuery{
		ExamID:    strings.TrimSpace(c.Query("exam_id")),
		StudentID: strings.TrimSpace(c.Query("student_id")),
	}
	query.Page, query.PageSize = pageParams(c)

	session := sessionFromContext(c)
	results, pagination, err := h.service.Results(c.Request.Context(), session, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, pagination, withMeta(c, map[string]interface{}{
		"can_edit": session != nil && policy.Can(session.Role, policy.CapRecordResults),
	}))
}

// UpsertResult godoc
// @Summary Record or correct an exam result
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body service.UpsertResultRequest true "Result payload"
// @Success 200 {object} response.Envelope
// @Router /exams/results [put]
func (h *ExamHandler) UpsertResult(c *gin.Context) {
	var req service.UpsertResultRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.UpsertResult(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
