package service

import (
	"math"
	"time"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// ViewComposer derives presentation flags from stored rows. Every result
// depends only on the arguments and the injected clock.
type ViewComposer struct {
	now func() time.Time
}

// NewViewComposer builds a composer. A nil clock uses time.Now.
func NewViewComposer(now func() time.Time) *ViewComposer {
	if now == nil {
		now = time.Now
	}
	return &ViewComposer{now: now}
}

// Now exposes the composer clock.
func (v *ViewComposer) Now() time.Time {
	return v.now()
}

// dateOnly takes the calendar day of an instant as seen in loc.
func dateOnly(t time.Time, loc *time.Location) time.Time {
	return calendarDay(t.In(loc), loc)
}

// calendarDay keeps the day a DATE column carries, whatever zone the driver
// attached to it.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// IsOverdue compares calendar dates only: a due date of today is not overdue.
// The due date is an instant and is read in the clock's zone.
func (v *ViewComposer) IsOverdue(due time.Time) bool {
	now := v.now()
	return dateOnly(due, now.Location()).Before(dateOnly(now, now.Location()))
}

// IsExpired reports whether an expiry instant has passed. No expiry never expires.
func (v *ViewComposer) IsExpired(expiresAt *time.Time) bool {
	return expiresAt != nil && expiresAt.Before(v.now())
}

// IsToday reports whether the date falls on the current calendar day.
func (v *ViewComposer) IsToday(date time.Time) bool {
	now := v.now()
	return calendarDay(date, now.Location()).Equal(dateOnly(now, now.Location()))
}

// ExamStatus classifies an exam date against today.
func (v *ViewComposer) ExamStatus(examDate time.Time) models.ExamStatus {
	now := v.now()
	exam, today := calendarDay(examDate, now.Location()), dateOnly(now, now.Location())
	switch {
	case exam.Before(today):
		return models.ExamStatusCompleted
	case exam.Equal(today):
		return models.ExamStatusToday
	default:
		return models.ExamStatusUpcoming
	}
}

// AttendanceRate is the rounded present percentage, 0 for an empty set.
func AttendanceRate(present, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

// AttendanceStats expands raw counts into the stats block.
func AttendanceStats(counts models.AttendanceCounts) models.AttendanceStats {
	return models.AttendanceStats{
		Total:   counts.Total,
		Present: counts.Present,
		Absent:  counts.Total - counts.Present,
		Rate:    AttendanceRate(counts.Present, counts.Total),
	}
}

// FinanceTotals sums amounts by payment status. Partial payments only count
// toward the total.
func FinanceTotals(rows []models.FinanceDetail) models.FinanceTotals {
	var totals models.FinanceTotals
	for _, row := range rows {
		totals.Total += row.Amount
		switch row.PaymentStatus {
		case models.PaymentPaid:
			totals.Paid += row.Amount
		case models.PaymentPending:
			totals.Pending += row.Amount
		case models.PaymentOverdue:
			totals.Overdue += row.Amount
		}
	}
	return totals
}
