package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/pkg/export"
	"github.com/noah-isme/school-portal-api/pkg/storage"
)

type reportingRepository interface {
	AttendanceSummary(ctx context.Context, filter models.ReportFilter) ([]models.AttendanceSummaryRow, error)
	FinancialOverview(ctx context.Context, filter models.ReportFilter) ([]models.FinancialOverviewRow, error)
	ExamResults(ctx context.Context, filter models.ReportFilter) ([]models.ExamResultRow, error)
	TeacherWorkload(ctx context.Context) ([]models.TeacherWorkloadRow, error)
	EnrollmentStatistics(ctx context.Context, filter models.ReportFilter) ([]models.EnrollmentRow, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	reporting reportingRepository
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(reporting reportingRepository, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		reporting: reporting,
		storage:   storage,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Generate builds the dataset for the job, renders it and stores the file
// behind a signed download token.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Debug("report rendered", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("rows", len(dataset.Rows)))

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	scope := "all"
	if job.Params.ClassID != nil && *job.Params.ClassID != "" {
		scope = sanitizeFilename(*job.Params.ClassID)
	}
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", job.Type, scope, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	filter, err := reportFilter(job.Params)
	if err != nil {
		return export.Dataset{}, "", err
	}
	switch job.Type {
	case models.ReportTypeAttendanceSummary:
		return s.attendanceDataset(ctx, filter)
	case models.ReportTypeFinancialOverview:
		return s.financeDataset(ctx, filter)
	case models.ReportTypeExamResults:
		return s.examDataset(ctx, filter)
	case models.ReportTypeTeacherWorkload:
		return s.workloadDataset(ctx)
	case models.ReportTypeEnrollmentStatistics:
		return s.enrollmentDataset(ctx, filter)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func reportFilter(params models.ReportJobParams) (models.ReportFilter, error) {
	filter := models.ReportFilter{}
	if params.ClassID != nil {
		filter.ClassID = *params.ClassID
	}
	for _, pair := range []struct {
		raw *string
		dst **time.Time
	}{{params.DateFrom, &filter.DateFrom}, {params.DateTo, &filter.DateTo}} {
		if pair.raw == nil || *pair.raw == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", *pair.raw)
		if err != nil {
			return filter, fmt.Errorf("parse report date %q: %w", *pair.raw, err)
		}
		*pair.dst = &parsed
	}
	return filter, nil
}

func (s *ExportService) attendanceDataset(ctx context.Context, filter models.ReportFilter) (export.Dataset, string, error) {
	rows, err := s.reporting.AttendanceSummary(ctx, filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataset := export.Dataset{Headers: []string{"Class", "Records", "Present", "Absent", "Attendance (%)"}}
	for _, row := range rows {
		dataset.AddRow(row.ClassName, strconv.Itoa(row.Total), strconv.Itoa(row.Present), strconv.Itoa(row.Absent), fmt.Sprintf("%.1f", row.Rate))
	}
	return dataset, "Attendance Summary", nil
}

func (s *ExportService) financeDataset(ctx context.Context, filter models.ReportFilter) (export.Dataset, string, error) {
	rows, err := s.reporting.FinancialOverview(ctx, filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataset := export.Dataset{Headers: []string{"Student", "Student Number", "Total", "Paid", "Pending", "Overdue"}}
	var total, paid, pending, overdue float64
	for _, row := range rows {
		dataset.AddRow(row.StudentName, row.StudentNumber, money(row.Total), money(row.Paid), money(row.Pending), money(row.Overdue))
		total += row.Total
		paid += row.Paid
		pending += row.Pending
		overdue += row.Overdue
	}
	dataset.AddRow("TOTAL", "", money(total), money(paid), money(pending), money(overdue))
	return dataset, "Financial Overview", nil
}

func (s *ExportService) examDataset(ctx context.Context, filter models.ReportFilter) (export.Dataset, string, error) {
	rows, err := s.reporting.ExamResults(ctx, filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataset := export.Dataset{Headers: []string{"Exam", "Date", "Class", "Subject", "Student", "Marks", "Out Of", "Effort"}}
	for _, row := range rows {
		marks := ""
		if row.MarksObtained != nil {
			marks = strconv.FormatFloat(*row.MarksObtained, 'f', -1, 64)
		}
		dataset.AddRow(row.ExamName, row.ExamDate.Format("2006-01-02"), row.ClassName, row.SubjectName,
			row.StudentName, marks, strconv.Itoa(row.TotalMarks), deref(row.EffortLevel))
	}
	return dataset, "Exam Results", nil
}

func (s *ExportService) workloadDataset(ctx context.Context) (export.Dataset, string, error) {
	rows, err := s.reporting.TeacherWorkload(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataset := export.Dataset{Headers: []string{"Teacher", "Role", "Classes Owned", "Subject Links", "Weekly Lessons"}}
	for _, row := range rows {
		dataset.AddRow(row.TeacherName, row.Role, strconv.Itoa(row.ClassesOwned), strconv.Itoa(row.SubjectLinks), strconv.Itoa(row.WeeklyLessons))
	}
	return dataset, "Teacher Workload", nil
}

func (s *ExportService) enrollmentDataset(ctx context.Context, filter models.ReportFilter) (export.Dataset, string, error) {
	rows, err := s.reporting.EnrollmentStatistics(ctx, filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataset := export.Dataset{Headers: []string{"Class", "Grade", "Stream", "Academic Year", "Capacity", "Students", "Utilization (%)"}}
	for _, row := range rows {
		dataset.AddRow(row.ClassName, strconv.Itoa(row.GradeLevel), deref(row.Stream), row.AcademicYear,
			strconv.Itoa(row.Capacity), strconv.Itoa(row.Students), fmt.Sprintf("%.1f", row.Utilization))
	}
	return dataset, "Enrollment Statistics", nil
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
