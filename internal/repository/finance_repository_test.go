package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

var financeDetailColumns = []string{"id", "student_id", "amount", "description", "transaction_type", "payment_status", "due_date", "payment_date",
	"created_by", "created_at", "student_name", "student_number"}

func TestFinanceRepositoryListDefaultsToFiftyNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFinanceRepository(db)

	status := models.PaymentOverdue
	now := time.Now()
	mock.ExpectQuery(`(?s)f\.student_id = \$1 AND f\.payment_status = \$2.*ORDER BY f\.created_at DESC LIMIT 50 OFFSET 0`).
		WithArgs("student-1", status).
		WillReturnRows(sqlmock.NewRows(financeDetailColumns).
			AddRow("tx-1", "student-1", 30.0, nil, "tuition", "overdue", nil, nil, nil, now, "Achieng", "S-001"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM finance_transactions f WHERE f.student_id = $1 AND f.payment_status = $2")).
		WithArgs("student-1", status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows, total, err := repo.List(context.Background(), models.FinanceFilter{StudentID: "student-1", Status: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.PaymentOverdue, rows[0].PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinanceRepositoryUpdateStatusMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFinanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE finance_transactions SET payment_status = $2, payment_date = $3 WHERE id = $1")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), "missing", models.PaymentPaid, nil)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
