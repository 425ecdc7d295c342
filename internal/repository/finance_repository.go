package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const financePageSize = 50

// FinanceRepository persists fee and payment transactions.
type FinanceRepository struct {
	db *sqlx.DB
}

// NewFinanceRepository constructs the repository.
func NewFinanceRepository(db *sqlx.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

// List returns the newest transactions first, 50 per page unless overridden.
func (r *FinanceRepository) List(ctx context.Context, filter models.FinanceFilter) ([]models.FinanceDetail, int, error) {
	var c conditions
	if filter.StudentID != "" {
		c.add("f.student_id = $%d", filter.StudentID)
	}
	if filter.Status != nil {
		c.add("f.payment_status = $%d", *filter.Status)
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = financePageSize
	}
	_, size, offset := pageWindow(filter.Page, pageSize)

	query := fmt.Sprintf(`SELECT f.id, f.student_id, f.amount, f.description, f.transaction_type, f.payment_status, f.due_date, f.payment_date, f.created_by, f.created_at,
    p.full_name AS student_name, s.student_number
FROM finance_transactions f
JOIN students s ON s.id = f.student_id
JOIN profiles p ON p.id = s.profile_id%s
ORDER BY f.created_at DESC
LIMIT %d OFFSET %d`, c.where(), size, offset)
	var rows []models.FinanceDetail
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list finance transactions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM finance_transactions f"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count finance transactions: %w", err)
	}
	return rows, total, nil
}

// Create inserts a transaction.
func (r *FinanceRepository) Create(ctx context.Context, tx *models.FinanceTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO finance_transactions (id, student_id, amount, description, transaction_type, payment_status, due_date, payment_date, created_by, created_at)
VALUES (:id, :student_id, :amount, :description, :transaction_type, :payment_status, :due_date, :payment_date, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		return fmt.Errorf("create finance transaction: %w", err)
	}
	return nil
}

// UpdateStatus changes the payment status and optional payment date.
func (r *FinanceRepository) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus, paymentDate *time.Time) (*models.FinanceTransaction, error) {
	const query = `UPDATE finance_transactions SET payment_status = $2, payment_date = $3 WHERE id = $1
RETURNING id, student_id, amount, description, transaction_type, payment_status, due_date, payment_date, created_by, created_at`
	var tx models.FinanceTransaction
	if err := r.db.GetContext(ctx, &tx, query, id, status, paymentDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update finance status: %w", err)
	}
	return &tx, nil
}
