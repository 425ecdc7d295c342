package models

import "time"

// AttendanceRecord is one student's presence on one day.
type AttendanceRecord struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Date      time.Time `db:"date" json:"date"`
	IsPresent bool      `db:"is_present" json:"is_present"`
	MarkedBy  *string   `db:"marked_by" json:"marked_by,omitempty"`
	Remarks   *string   `db:"remarks" json:"remarks,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AttendanceDetail joins a record with student, class and marker names.
type AttendanceDetail struct {
	AttendanceRecord
	StudentName   string  `db:"student_name" json:"student_name"`
	StudentNumber string  `db:"student_number" json:"student_number"`
	ClassName     string  `db:"class_name" json:"class_name"`
	MarkedByName  *string `db:"marked_by_name" json:"marked_by_name,omitempty"`
}

// AttendanceFilter scopes attendance listing queries.
type AttendanceFilter struct {
	Scope     ClassScope
	StudentID string
	Date      *time.Time
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

// AttendanceCounts are the raw aggregates of a filtered attendance set.
type AttendanceCounts struct {
	Total   int `db:"total"`
	Present int `db:"present"`
}

// AttendanceStats summarises a filtered attendance set.
type AttendanceStats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Rate    int `json:"rate"`
}
