package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type fakeFinanceRepo struct {
	rows       []models.FinanceDetail
	lastFilter *models.FinanceFilter
	listCalls  int
	created    []models.FinanceTransaction
}

func (f *fakeFinanceRepo) List(ctx context.Context, filter models.FinanceFilter) ([]models.FinanceDetail, int, error) {
	f.listCalls++
	f.lastFilter = &filter
	var out []models.FinanceDetail
	for _, row := range f.rows {
		if filter.StudentID != "" && row.StudentID != filter.StudentID {
			continue
		}
		out = append(out, row)
	}
	return out, len(out), nil
}

func (f *fakeFinanceRepo) Create(ctx context.Context, tx *models.FinanceTransaction) error {
	tx.ID = "tx-new"
	f.created = append(f.created, *tx)
	return nil
}

func (f *fakeFinanceRepo) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus, paymentDate *time.Time) (*models.FinanceTransaction, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].PaymentStatus = status
			f.rows[i].PaymentDate = paymentDate
			tx := f.rows[i].FinanceTransaction
			return &tx, nil
		}
	}
	return nil, errNoRows
}

func financeRow(id, student string, amount float64, status models.PaymentStatus) models.FinanceDetail {
	return models.FinanceDetail{FinanceTransaction: models.FinanceTransaction{ID: id, StudentID: student, Amount: amount, PaymentStatus: status}}
}

func financeFixture() (*FinanceService, *fakeFinanceRepo) {
	repo := &fakeFinanceRepo{rows: []models.FinanceDetail{
		financeRow("tx-1", stuA, 100, models.PaymentPaid),
		financeRow("tx-2", stuA, 50, models.PaymentPending),
		financeRow("tx-3", stuA, 30, models.PaymentOverdue),
		financeRow("tx-4", stuB, 500, models.PaymentPartial),
	}}
	students := fakeStudentDirectory{students: map[string]*models.StudentDetail{
		stuA: {Student: models.Student{ID: stuA}},
	}}
	scopes := staticScopes{
		"admin":    {Unrestricted: true},
		"teacher":  {ClassIDs: []string{classA}},
		"student":  {ClassIDs: []string{classA}, Student: true, StudentID: stuA},
		"orphaned": {ClassIDs: []string{}, Student: true},
	}
	clock := NewViewComposer(fixedClock(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)))
	return NewFinanceService(repo, students, scopes, &recordingAudit{}, clock, nil, nil), repo
}

func TestFinanceStudentSeesOwnRowsWithTotals(t *testing.T) {
	svc, repo := financeFixture()
	student := &models.Session{ProfileID: "student", Role: models.RoleStudent}

	view, err := svc.List(context.Background(), student, FinanceQuery{StudentID: stuB})
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, repo.listCalls)

	view, err = svc.List(context.Background(), student, FinanceQuery{})
	require.NoError(t, err)
	assert.Len(t, view.Items, 3)
	assert.Equal(t, models.FinanceTotals{Total: 180, Paid: 100, Pending: 50, Overdue: 30}, view.Totals)
	assert.Equal(t, stuA, repo.lastFilter.StudentID)
	assert.Equal(t, financePageSize, repo.lastFilter.PageSize)
	assert.False(t, view.CanEdit)

	orphan := &models.Session{ProfileID: "orphaned", Role: models.RoleStudent}
	view, err = svc.List(context.Background(), orphan, FinanceQuery{})
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 1, repo.listCalls)
}

func TestFinanceTeachingRolesRefused(t *testing.T) {
	svc, repo := financeFixture()
	for _, role := range models.TeachingRoles {
		_, err := svc.List(context.Background(), &models.Session{ProfileID: "teacher", Role: role}, FinanceQuery{})
		require.Error(t, err)
		assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code), role)
	}
	assert.Equal(t, 0, repo.listCalls)
}

func TestFinanceAdminSeesEverything(t *testing.T) {
	svc, _ := financeFixture()
	admin := &models.Session{ProfileID: "admin", Role: models.RoleAdmin}

	view, err := svc.List(context.Background(), admin, FinanceQuery{})
	require.NoError(t, err)
	assert.Len(t, view.Items, 4)
	assert.Equal(t, 680.0, view.Totals.Total)
	assert.Equal(t, 100.0, view.Totals.Paid)
	assert.True(t, view.CanEdit)
}

func TestFinanceCreate(t *testing.T) {
	svc, repo := financeFixture()
	admin := &models.Session{ProfileID: "admin", Role: models.RoleAdmin}
	sub := &models.Session{ProfileID: "admin", Role: models.RoleSubAdmin}
	req := CreateTransactionRequest{StudentID: stuA, Amount: 1200, TransactionType: "fee", PaymentStatus: "paid", DueDate: "2024-03-31"}

	_, err := svc.Create(context.Background(), sub, req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	zero := req
	zero.Amount = 0
	_, err = svc.Create(context.Background(), admin, zero)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	badStatus := req
	badStatus.PaymentStatus = "waived"
	_, err = svc.Create(context.Background(), admin, badStatus)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	tx, err := svc.Create(context.Background(), admin, req)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, tx.PaymentStatus)
	require.NotNil(t, tx.PaymentDate)
	assert.Equal(t, "2024-03-04", tx.PaymentDate.Format("2006-01-02"))
	assert.Equal(t, "2024-03-31", tx.DueDate.Format("2006-01-02"))
	assert.Len(t, repo.created, 1)
}

func TestFinanceUpdateStatus(t *testing.T) {
	svc, _ := financeFixture()
	admin := &models.Session{ProfileID: "admin", Role: models.RoleAdmin}

	tx, err := svc.UpdateStatus(context.Background(), admin, "tx-2", UpdatePaymentStatusRequest{PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, tx.PaymentStatus)
	assert.Equal(t, "2024-03-04", tx.PaymentDate.Format("2006-01-02"))

	tx, err = svc.UpdateStatus(context.Background(), admin, "tx-3", UpdatePaymentStatusRequest{PaymentStatus: "partial", PaymentDate: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", tx.PaymentDate.Format("2006-01-02"))

	_, err = svc.UpdateStatus(context.Background(), admin, "tx-missing", UpdatePaymentStatusRequest{PaymentStatus: "paid"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}
