package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type financeService interface {
	List(ctx context.Context, session *models.Session, query service.FinanceQuery) (*service.FinanceView, error)
	Create(ctx context.Context, session *models.Session, req service.CreateTransactionRequest) (*models.FinanceTransaction, error)
	UpdateStatus(ctx context.Context, session *models.Session, id string, req service.UpdatePaymentStatusRequest) (*models.FinanceTransaction, error)
}

// FinanceHandler exposes fee transaction endpoints.
type FinanceHandler struct {
	service financeService
}

// NewFinanceHandler constructs the handler.
func NewFinanceHandler(svc financeService) *FinanceHandler {
	return &FinanceHandler{service: svc}
}

// List godoc
// @Summary List finance transactions
// @Description Students see their own transactions only. The response carries per-status totals.
// @Tags Finance
// @Produce json
// @Param student_id query string false "Student ID"
// @Param status query string false "pending, paid, overdue or partial"
// @Param page query int false "Page"
// @Param page_size query int false "Page size (default 50)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /finance [get]
func (h *FinanceHandler) List(c *gin.Context) {
	query := service.FinanceQuery{StudentID: strings.TrimSpace(c.Query("student_id"))}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.PaymentStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown payment status"))
			return
		}
		query.Status = &status
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

// Create godoc
// @Summary Record a finance transaction
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body service.CreateTransactionRequest true "Transaction payload"
// @Success 201 {object} response.Envelope
// @Router /finance [post]
func (h *FinanceHandler) Create(c *gin.Context) {
	var req service.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	tx, err := h.service.Create(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tx)
}

// UpdateStatus godoc
// @Summary Update payment status
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param payload body service.UpdatePaymentStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /finance/{id}/status [put]
func (h *FinanceHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdatePaymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	tx, err := h.service.UpdateStatus(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tx, nil)
}
