package models

import "time"

// Class represents a class room for one academic year.
type Class struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	GradeLevel     int       `db:"grade_level" json:"grade_level"`
	Stream         *string   `db:"stream" json:"stream,omitempty"`
	AcademicYear   string    `db:"academic_year" json:"academic_year"`
	Capacity       int       `db:"capacity" json:"capacity"`
	ClassTeacherID *string   `db:"class_teacher_id" json:"class_teacher_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with its teacher name and head count.
type ClassDetail struct {
	Class
	ClassTeacherName *string `db:"class_teacher_name" json:"class_teacher_name,omitempty"`
	StudentCount     int     `db:"student_count" json:"student_count"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Scope      ClassScope
	GradeLevel *int
	Stream     string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
