package models

import "time"

// Student links a student profile to its class and guardian details.
type Student struct {
	ID            string     `db:"id" json:"id"`
	ProfileID     string     `db:"profile_id" json:"profile_id"`
	ClassID       *string    `db:"class_id" json:"class_id,omitempty"`
	StudentNumber string     `db:"student_number" json:"student_number"`
	AdmissionDate *time.Time `db:"admission_date" json:"admission_date,omitempty"`
	ParentName    *string    `db:"parent_name" json:"parent_name,omitempty"`
	ParentPhone   *string    `db:"parent_phone" json:"parent_phone,omitempty"`
	ParentEmail   *string    `db:"parent_email" json:"parent_email,omitempty"`
	StudentRole   *string    `db:"student_role" json:"student_role,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentDetail contains student information joined with profile and class.
type StudentDetail struct {
	Student
	FullName  string  `db:"full_name" json:"full_name"`
	Email     string  `db:"email" json:"email"`
	ClassName *string `db:"class_name" json:"class_name,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Scope     ClassScope
	StudentID string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
