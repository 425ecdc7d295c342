package models

import "time"

// TimetableSlot is a weekly recurring lesson for a class.
type TimetableSlot struct {
	ID         string    `db:"id" json:"id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	TeacherID  *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	RoomNumber *string   `db:"room_number" json:"room_number,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TimetableDetail joins a slot with class, subject and teacher names.
type TimetableDetail struct {
	TimetableSlot
	ClassName   string  `db:"class_name" json:"class_name"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	SubjectCode string  `db:"subject_code" json:"subject_code"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// TimetableFilter describes query params for listing slots.
type TimetableFilter struct {
	Scope      ClassScope
	GradeLevel *int
	Stream     string
	DayOfWeek  *int
	TeacherID  string
	Page       int
	PageSize   int
}
