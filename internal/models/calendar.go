package models

import (
	"time"

	"github.com/lib/pq"
)

// EventType categorises calendar entries.
type EventType string

const (
	EventAcademic EventType = "academic"
	EventExam     EventType = "exam"
	EventHoliday  EventType = "holiday"
	EventMeeting  EventType = "meeting"
	EventGeneral  EventType = "event"
	EventSports   EventType = "sports"
)

// Valid reports whether the event type is supported.
func (e EventType) Valid() bool {
	switch e {
	case EventAcademic, EventExam, EventHoliday, EventMeeting, EventGeneral, EventSports:
		return true
	default:
		return false
	}
}

// CalendarEvent represents a school calendar entry.
type CalendarEvent struct {
	ID            string         `db:"id" json:"id"`
	Title         string         `db:"title" json:"title"`
	Description   *string        `db:"description" json:"description,omitempty"`
	EventDate     time.Time      `db:"event_date" json:"event_date"`
	EventType     EventType      `db:"event_type" json:"event_type"`
	StartTime     *string        `db:"start_time" json:"start_time,omitempty"`
	EndTime       *string        `db:"end_time" json:"end_time,omitempty"`
	IsSchoolWide  bool           `db:"is_school_wide" json:"is_school_wide"`
	TargetClasses pq.StringArray `db:"target_classes" json:"target_classes"`
	CreatedBy     *string        `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// CalendarEventDetail adds the today flag.
type CalendarEventDetail struct {
	CalendarEvent
	IsToday bool `db:"-" json:"is_today"`
}

// CalendarFilter narrows down events.
type CalendarFilter struct {
	Scope    ClassScope
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
