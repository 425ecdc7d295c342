package models

import "time"

// Subject represents a learning area taught at a grade level.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Code         string    `db:"code" json:"code"`
	GradeLevel   int       `db:"grade_level" json:"grade_level"`
	LearningArea *string   `db:"learning_area" json:"learning_area,omitempty"`
	CBCStrand    *string   `db:"cbc_strand" json:"cbc_strand,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	GradeLevel   *int
	LearningArea string
	TeacherID    string
	Search       string
	Page         int
	PageSize     int
}

// TeacherSubject assigns a teacher to a subject in one class.
type TeacherSubject struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
