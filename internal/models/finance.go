package models

import "time"

// PaymentStatus tracks settlement of a finance transaction.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
	PaymentPartial PaymentStatus = "partial"
)

// Valid reports whether the status is supported.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentOverdue, PaymentPartial:
		return true
	default:
		return false
	}
}

// FinanceTransaction is a fee or payment line for a student.
type FinanceTransaction struct {
	ID              string        `db:"id" json:"id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	Amount          float64       `db:"amount" json:"amount"`
	Description     *string       `db:"description" json:"description,omitempty"`
	TransactionType string        `db:"transaction_type" json:"transaction_type"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"payment_status"`
	DueDate         *time.Time    `db:"due_date" json:"due_date,omitempty"`
	PaymentDate     *time.Time    `db:"payment_date" json:"payment_date,omitempty"`
	CreatedBy       *string       `db:"created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// FinanceDetail joins a transaction with the student's name and number.
type FinanceDetail struct {
	FinanceTransaction
	StudentName   string `db:"student_name" json:"student_name"`
	StudentNumber string `db:"student_number" json:"student_number"`
}

// FinanceFilter scopes finance listings.
type FinanceFilter struct {
	StudentID string
	Status    *PaymentStatus
	Page      int
	PageSize  int
}

// FinanceTotals aggregates amounts by payment status.
type FinanceTotals struct {
	Total   float64 `json:"total"`
	Paid    float64 `json:"paid"`
	Pending float64 `json:"pending"`
	Overdue float64 `json:"overdue"`
}
