package models

import "time"

// Assignment is homework set for a class.
type Assignment struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	TeacherID   *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	TotalMarks  int       `db:"total_marks" json:"total_marks"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AssignmentDetail joins an assignment with names and presentation flags.
type AssignmentDetail struct {
	Assignment
	ClassName   string  `db:"class_name" json:"class_name"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
	Submitted   bool    `db:"submitted" json:"submitted"`
	IsOverdue   bool    `db:"-" json:"is_overdue"`
}

// AssignmentFilter scopes assignment listings. StudentID fills Submitted.
type AssignmentFilter struct {
	Scope     ClassScope
	SubjectID string
	StudentID string
	Page      int
	PageSize  int
}

// AssignmentSubmission is a student's answer to an assignment.
type AssignmentSubmission struct {
	ID             string    `db:"id" json:"id"`
	AssignmentID   string    `db:"assignment_id" json:"assignment_id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	SubmissionText *string   `db:"submission_text" json:"submission_text,omitempty"`
	FileURL        *string   `db:"file_url" json:"file_url,omitempty"`
	MarksObtained  *float64  `db:"marks_obtained" json:"marks_obtained,omitempty"`
	Feedback       *string   `db:"feedback" json:"feedback,omitempty"`
	SubmittedAt    time.Time `db:"submitted_at" json:"submitted_at"`
}

// SubmissionDetail joins a submission with the student name.
type SubmissionDetail struct {
	AssignmentSubmission
	StudentName string `db:"student_name" json:"student_name"`
}
