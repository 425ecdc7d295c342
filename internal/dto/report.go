package dto

import "github.com/noah-isme/school-portal-api/internal/models"

// ReportRequest captures the POST /reports payload.
type ReportRequest struct {
	Type     models.ReportType   `json:"type" validate:"required,oneof=attendance-summary financial-overview exam-results teacher-workload enrollment-statistics"`
	Format   models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	ClassID  *string             `json:"class_id,omitempty" validate:"omitempty,uuid"`
	DateFrom *string             `json:"date_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo   *string             `json:"date_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Type     models.ReportType   `json:"type"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID         string              `json:"id"`
	Type       models.ReportType   `json:"type"`
	Status     models.ReportStatus `json:"status"`
	Progress   int                 `json:"progress"`
	ResultURL  *string             `json:"result_url,omitempty"`
	Error      *string             `json:"error,omitempty"`
	FinishedAt *string             `json:"finished_at,omitempty"`
}
