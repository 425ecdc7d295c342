package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
)

type financeRepository interface {
	List(ctx context.Context, filter models.FinanceFilter) ([]models.FinanceDetail, int, error)
	Create(ctx context.Context, tx *models.FinanceTransaction) error
	UpdateStatus(ctx context.Context, id string, status models.PaymentStatus, paymentDate *time.Time) (*models.FinanceTransaction, error)
}

type financeStudentLookup interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// FinanceQuery holds the explicit finance filters.
type FinanceQuery struct {
	StudentID string
	Status    *models.PaymentStatus
	Page      int
	PageSize  int
}

// FinanceView is one page of transactions with the totals of that page.
type FinanceView struct {
	Items      []models.FinanceDetail `json:"items"`
	Totals     models.FinanceTotals   `json:"totals"`
	Pagination *models.Pagination     `json:"-"`
	CanEdit    bool                   `json:"-"`
}

// CreateTransactionRequest records a fee or payment.
type CreateTransactionRequest struct {
	StudentID       string  `json:"student_id" validate:"required,uuid"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	Description     *string `json:"description" validate:"omitempty,max=500"`
	TransactionType string  `json:"transaction_type" validate:"required,max=50"`
	PaymentStatus   string  `json:"payment_status" validate:"required,payment_status"`
	DueDate         string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdatePaymentStatusRequest settles or re-opens a transaction.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,payment_status"`
	PaymentDate   string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
}

const financePageSize = 50

// FinanceService exposes fee transactions to administrators and the paying student.
type FinanceService struct {
	repo      financeRepository
	students  financeStudentLookup
	scopes    scopeResolver
	audit     auditWriter
	view      *ViewComposer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFinanceService constructs the service.
func NewFinanceService(repo financeRepository, students financeStudentLookup, scopes scopeResolver, audit auditWriter, view *ViewComposer, validate *validator.Validate, logger *zap.Logger) *FinanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if view == nil {
		view = NewViewComposer(nil)
	}
	return &FinanceService{repo: repo, students: students, scopes: scopes, audit: audit, view: view, validator: validate, logger: logger}
}

// List returns transactions. Teaching roles are refused outright and a
// student is pinned to its own rows.
func (s *FinanceService) List(ctx context.Context, session *models.Session, query FinanceQuery) (*FinanceView, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !policy.Can(session.Role, policy.CapViewFinance) {
		return nil, forbidden()
	}
	if query.PageSize <= 0 {
		query.PageSize = financePageSize
	}
	view := &FinanceView{
		Items:      []models.FinanceDetail{},
		Pagination: paginate(query.Page, query.PageSize, 0),
		CanEdit:    policy.Can(session.Role, policy.CapManageFinance),
	}

	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	studentID, ok := scope.NarrowStudent(query.StudentID)
	if !ok {
		return view, nil
	}

	rows, total, err := s.repo.List(ctx, models.FinanceFilter{
		StudentID: studentID,
		Status:    query.Status,
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
	if err != nil {
		return nil, internalError(err, "failed to fetch finance records")
	}
	view.Items = rows
	view.Totals = FinanceTotals(rows)
	view.Pagination = paginate(query.Page, query.PageSize, total)
	return view, nil
}

// Create records a transaction. Admin only.
func (s *FinanceService) Create(ctx context.Context, session *models.Session, req CreateTransactionRequest) (*models.FinanceTransaction, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid transaction payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, lookupError(err, "student not found", "failed to fetch student")
	}
	tx := &models.FinanceTransaction{
		StudentID:       req.StudentID,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionType: req.TransactionType,
		PaymentStatus:   models.PaymentStatus(req.PaymentStatus),
		CreatedBy:       &session.ProfileID,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, validationError(err, "due_date must be YYYY-MM-DD")
		}
		tx.DueDate = &due
	}
	if tx.PaymentStatus == models.PaymentPaid {
		tx.PaymentDate = s.today()
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, internalError(err, "failed to create transaction")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionCreate, "finance_transaction", tx.ID, tx)
	return tx, nil
}

// UpdateStatus changes the payment status. A paid transaction without an
// explicit payment date is stamped with today.
func (s *FinanceService) UpdateStatus(ctx context.Context, session *models.Session, id string, req UpdatePaymentStatusRequest) (*models.FinanceTransaction, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid payment status payload")
	}
	status := models.PaymentStatus(req.PaymentStatus)
	var paidOn *time.Time
	switch {
	case req.PaymentDate != "":
		parsed, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return nil, validationError(err, "payment_date must be YYYY-MM-DD")
		}
		paidOn = &parsed
	case status == models.PaymentPaid:
		paidOn = s.today()
	}

	tx, err := s.repo.UpdateStatus(ctx, id, status, paidOn)
	if err != nil {
		return nil, lookupError(err, "transaction not found", "failed to update transaction")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionUpdate, "finance_transaction", id, req)
	return tx, nil
}

func (s *FinanceService) authorize(session *models.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if !policy.Can(session.Role, policy.CapManageFinance) {
		return forbidden()
	}
	return nil
}

func (s *FinanceService) today() *time.Time {
	now := s.view.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}
