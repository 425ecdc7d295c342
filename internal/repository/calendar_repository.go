package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// CalendarRepository persists school calendar events.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs the repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// List returns school-wide events plus events targeting the scoped classes.
func (r *CalendarRepository) List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error) {
	var c conditions
	if filter.Scope.Restricted {
		c.add("(e.is_school_wide OR e.target_classes && $%d::uuid[])", pq.Array(filter.Scope.ClassIDs))
	}
	if filter.From != nil {
		c.add("e.event_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		c.add("e.event_date <= $%d", *filter.To)
	}
	_, size, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT e.id, e.title, e.description, e.event_date, e.event_type,
    to_char(e.start_time, 'HH24:MI') AS start_time, to_char(e.end_time, 'HH24:MI') AS end_time,
    e.is_school_wide, e.target_classes, e.created_by, e.created_at
FROM calendar_events e%s
ORDER BY e.event_date ASC, e.start_time ASC NULLS FIRST
LIMIT %d OFFSET %d`, c.where(), size, offset)
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list calendar events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM calendar_events e"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count calendar events: %w", err)
	}
	return events, total, nil
}

// Create inserts an event.
func (r *CalendarRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = time.Now().UTC()
	if event.TargetClasses == nil {
		event.TargetClasses = pq.StringArray{}
	}
	const query = `INSERT INTO calendar_events (id, title, description, event_date, event_type, start_time, end_time, is_school_wide, target_classes, created_by, created_at)
VALUES (:id, :title, :description, :event_date, :event_type, :start_time, :end_time, :is_school_wide, :target_classes, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}
