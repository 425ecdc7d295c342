package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
)

type financeServiceFake struct {
	lastQuery *service.FinanceQuery
}

func (f *financeServiceFake) List(_ context.Context, _ *models.Session, query service.FinanceQuery) (*service.FinanceView, error) {
	f.lastQuery = &query
	return &service.FinanceView{
		Items:      []models.FinanceDetail{},
		Totals:     models.FinanceTotals{Total: 180, Paid: 100, Pending: 50, Overdue: 30},
		Pagination: &models.Pagination{Page: 1, PageSize: 50, TotalCount: 0},
	}, nil
}

func (f *financeServiceFake) Create(context.Context, *models.Session, service.CreateTransactionRequest) (*models.FinanceTransaction, error) {
	return &models.FinanceTransaction{ID: "tx-1"}, nil
}

func (f *financeServiceFake) UpdateStatus(_ context.Context, _ *models.Session, id string, req service.UpdatePaymentStatusRequest) (*models.FinanceTransaction, error) {
	return &models.FinanceTransaction{ID: id, PaymentStatus: models.PaymentStatus(req.PaymentStatus)}, nil
}

func TestFinanceHandlerListReturnsTotals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &financeServiceFake{}
	handler := NewFinanceHandler(fake)

	c, w := newGinContext(http.MethodGet, "/finance?status=overdue", nil)
	withSession(c, models.RoleStudent)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, fake.lastQuery.Status)
	assert.Equal(t, models.PaymentOverdue, *fake.lastQuery.Status)

	envelope := decodeEnvelope(t, w)
	totals := envelope.Data["totals"].(map[string]interface{})
	assert.EqualValues(t, 180, totals["total"])
	assert.EqualValues(t, 30, totals["overdue"])
	assert.Equal(t, false, envelope.Meta["can_edit"])
}

func TestFinanceHandlerRejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &financeServiceFake{}
	handler := NewFinanceHandler(fake)

	c, w := newGinContext(http.MethodGet, "/finance?status=settled", nil)
	withSession(c, models.RoleAdmin)
	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, fake.lastQuery)
}

func TestFinanceHandlerUpdateStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFinanceHandler(&financeServiceFake{})

	c, w := newGinContext(http.MethodPut, "/finance/tx-9/status", []byte(`{"payment_status":"paid"}`))
	c.Params = gin.Params{{Key: "id", Value: "tx-9"}}
	withSession(c, models.RoleAdmin)
	handler.UpdateStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "tx-9", envelope.Data["id"])
	assert.Equal(t, "paid", envelope.Data["payment_status"])
}
