package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error)
	Counts(ctx context.Context, filter models.AttendanceFilter) (models.AttendanceCounts, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	BulkUpsert(ctx context.Context, records []models.AttendanceRecord) ([]models.AttendanceRecord, error)
}

type attendanceStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	IDsInClass(ctx context.Context, classID string) ([]string, error)
}

// AttendanceQuery are the explicit filters of an attendance listing.
type AttendanceQuery struct {
	ClassID   string
	StudentID string
	Date      *time.Time
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

// AttendanceView is the composed attendance page.
type AttendanceView struct {
	Items      []models.AttendanceDetail `json:"items"`
	Stats      models.AttendanceStats    `json:"stats"`
	Pagination *models.Pagination        `json:"-"`
	CanEdit    bool                      `json:"-"`
}

// MarkAttendanceRequest marks one student for one day. Date defaults to today.
type MarkAttendanceRequest struct {
	StudentID string  `json:"student_id" validate:"required,uuid"`
	Date      string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	IsPresent *bool   `json:"is_present" validate:"required"`
	Remarks   *string `json:"remarks" validate:"omitempty,max=500"`
}

// BulkAttendanceEntry is one row of a class register.
type BulkAttendanceEntry struct {
	StudentID string  `json:"student_id" validate:"required,uuid"`
	IsPresent *bool   `json:"is_present" validate:"required"`
	Remarks   *string `json:"remarks" validate:"omitempty,max=500"`
}

// BulkAttendanceRequest marks a whole class register for one day.
type BulkAttendanceRequest struct {
	ClassID string                `json:"class_id" validate:"required,uuid"`
	Date    string                `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Records []BulkAttendanceEntry `json:"records" validate:"required,min=1,dive"`
}

// AttendanceService lists and marks daily attendance.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentRepository
	scopes    scopeResolver
	audit     auditWriter
	view      *ViewComposer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, students attendanceStudentRepository, scopes scopeResolver, audit auditWriter, view *ViewComposer, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if view == nil {
		view = NewViewComposer(nil)
	}
	return &AttendanceService{repo: repo, students: students, scopes: scopes, audit: audit, view: view, validator: validate, logger: logger}
}

// List returns the attendance rows visible to the session with aggregate stats.
func (s *AttendanceService) List(ctx context.Context, session *models.Session, query AttendanceQuery) (*AttendanceView, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	view := &AttendanceView{
		Items:      []models.AttendanceDetail{},
		Pagination: paginate(query.Page, query.PageSize, 0),
		CanEdit:    policy.Can(session.Role, policy.CapMarkAttendance),
	}

	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	classScope, ok := scope.ClassFilter(query.ClassID)
	if !ok {
		return view, nil
	}
	studentID, ok := scope.NarrowStudent(query.StudentID)
	if !ok {
		return view, nil
	}

	filter := models.AttendanceFilter{
		Scope:     classScope,
		StudentID: studentID,
		Date:      query.Date,
		DateFrom:  query.DateFrom,
		DateTo:    query.DateTo,
		Page:      query.Page,
		PageSize:  query.PageSize,
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to fetch attendance")
	}
	counts, err := s.repo.Counts(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to fetch attendance")
	}
	view.Items = rows
	view.Stats = AttendanceStats(counts)
	view.Pagination = paginate(query.Page, query.PageSize, total)
	return view, nil
}

// Mark upserts the attendance of one student. Only class teachers may mark and
// only within their classes.
func (s *AttendanceService) Mark(ctx context.Context, session *models.Session, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !policy.Can(session.Role, policy.CapMarkAttendance) {
		return nil, forbidden()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	date, err := s.markDate(req.Date)
	if err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to fetch student")
	}
	if student.ClassID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not assigned to a class")
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	if !scope.Contains(*student.ClassID) {
		return nil, forbidden()
	}

	record, err := s.repo.Upsert(ctx, &models.AttendanceRecord{
		StudentID: student.ID,
		ClassID:   *student.ClassID,
		Date:      date,
		IsPresent: *req.IsPresent,
		MarkedBy:  &session.ProfileID,
		Remarks:   req.Remarks,
	})
	if err != nil {
		return nil, internalError(err, "failed to update attendance")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionUpsert, "attendance", record.ID, record)
	return record, nil
}

// BulkMark marks a class register in one transaction. Every student must
// belong to the class.
func (s *AttendanceService) BulkMark(ctx context.Context, session *models.Session, req BulkAttendanceRequest) ([]models.AttendanceRecord, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if !policy.Can(session.Role, policy.CapMarkAttendance) {
		return nil, forbidden()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	date, err := s.markDate(req.Date)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopes.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	if !scope.Contains(req.ClassID) {
		return nil, forbidden()
	}

	roster, err := s.students.IDsInClass(ctx, req.ClassID)
	if err != nil {
		return nil, internalError(err, "failed to fetch students")
	}
	enrolled := make(map[string]struct{}, len(roster))
	for _, id := range roster {
		enrolled[id] = struct{}{}
	}

	records := make([]models.AttendanceRecord, 0, len(req.Records))
	for _, entry := range req.Records {
		if _, ok := enrolled[entry.StudentID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student "+entry.StudentID+" is not in this class")
		}
		records = append(records, models.AttendanceRecord{
			StudentID: entry.StudentID,
			ClassID:   req.ClassID,
			Date:      date,
			IsPresent: *entry.IsPresent,
			MarkedBy:  &session.ProfileID,
			Remarks:   entry.Remarks,
		})
	}

	stored, err := s.repo.BulkUpsert(ctx, records)
	if err != nil {
		return nil, internalError(err, "failed to update attendance")
	}
	recordAudit(ctx, s.audit, s.logger, session, models.AuditActionUpsert, "attendance", req.ClassID,
		map[string]interface{}{"date": date.Format("2006-01-02"), "count": len(stored)})
	return stored, nil
}

func (s *AttendanceService) markDate(raw string) (time.Time, error) {
	if raw == "" {
		now := s.view.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, validationError(err, "date must be YYYY-MM-DD")
	}
	return date, nil
}
