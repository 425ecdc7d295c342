package models

import "time"

// ExamStatus is derived from the exam date relative to today.
type ExamStatus string

const (
	ExamStatusUpcoming  ExamStatus = "upcoming"
	ExamStatusToday     ExamStatus = "today"
	ExamStatusCompleted ExamStatus = "completed"
)

// EffortLevel grades the learner's effort on a result.
type EffortLevel string

const (
	EffortExcellent EffortLevel = "excellent"
	EffortGood      EffortLevel = "good"
	EffortImprove   EffortLevel = "improve"
)

// Valid reports whether the effort level is supported.
func (e EffortLevel) Valid() bool {
	switch e {
	case EffortExcellent, EffortGood, EffortImprove:
		return true
	default:
		return false
	}
}

// Exam is a scheduled assessment for one class and subject.
type Exam struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	ClassID         string    `db:"class_id" json:"class_id"`
	SubjectID       string    `db:"subject_id" json:"subject_id"`
	ExamDate        time.Time `db:"exam_date" json:"exam_date"`
	TotalMarks      int       `db:"total_marks" json:"total_marks"`
	DurationMinutes *int      `db:"duration_minutes" json:"duration_minutes,omitempty"`
	CreatedBy       *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ExamDetail joins an exam with names and its derived status.
type ExamDetail struct {
	Exam
	ClassName   string     `db:"class_name" json:"class_name"`
	SubjectName string     `db:"subject_name" json:"subject_name"`
	Status      ExamStatus `db:"-" json:"status"`
}

// ExamFilter scopes exam listings.
type ExamFilter struct {
	Scope     ClassScope
	SubjectID string
	Page      int
	PageSize  int
}

// ExamResult is a student's mark on an exam.
type ExamResult struct {
	ID            string       `db:"id" json:"id"`
	ExamID        string       `db:"exam_id" json:"exam_id"`
	StudentID     string       `db:"student_id" json:"student_id"`
	MarksObtained *float64     `db:"marks_obtained" json:"marks_obtained,omitempty"`
	EffortLevel   *EffortLevel `db:"effort_level" json:"effort_level,omitempty"`
	Feedback      *string      `db:"feedback" json:"feedback,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// ExamResultDetail joins a result with exam and student names.
type ExamResultDetail struct {
	ExamResult
	ExamName    string    `db:"exam_name" json:"exam_name"`
	ExamDate    time.Time `db:"exam_date" json:"exam_date"`
	TotalMarks  int       `db:"total_marks" json:"total_marks"`
	ClassID     string    `db:"class_id" json:"class_id"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	StudentName string    `db:"student_name" json:"student_name"`
}

// ExamResultFilter scopes result listings. StudentID pins a single learner.
type ExamResultFilter struct {
	Scope     ClassScope
	ExamID    string
	StudentID string
	Page      int
	PageSize  int
}
