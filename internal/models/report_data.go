package models

import "time"

// ReportFilter narrows report datasets.
type ReportFilter struct {
	ClassID  string
	DateFrom *time.Time
	DateTo   *time.Time
}

// AttendanceSummaryRow aggregates attendance per class.
type AttendanceSummaryRow struct {
	ClassName string  `db:"class_name"`
	Total     int     `db:"total"`
	Present   int     `db:"present"`
	Absent    int     `db:"absent"`
	Rate      float64 `db:"rate"`
}

// FinancialOverviewRow aggregates transactions per student.
type FinancialOverviewRow struct {
	StudentName   string  `db:"student_name"`
	StudentNumber string  `db:"student_number"`
	Total         float64 `db:"total"`
	Paid          float64 `db:"paid"`
	Pending       float64 `db:"pending"`
	Overdue       float64 `db:"overdue"`
}

// ExamResultRow is one mark in the exam results report.
type ExamResultRow struct {
	ExamName      string    `db:"exam_name"`
	ExamDate      time.Time `db:"exam_date"`
	ClassName     string    `db:"class_name"`
	SubjectName   string    `db:"subject_name"`
	StudentName   string    `db:"student_name"`
	MarksObtained *float64  `db:"marks_obtained"`
	TotalMarks    int       `db:"total_marks"`
	EffortLevel   *string   `db:"effort_level"`
}

// TeacherWorkloadRow summarises the teaching load of one teacher.
type TeacherWorkloadRow struct {
	TeacherName   string `db:"teacher_name"`
	Role          string `db:"role"`
	ClassesOwned  int    `db:"classes_owned"`
	SubjectLinks  int    `db:"subject_links"`
	WeeklyLessons int    `db:"weekly_lessons"`
}

// EnrollmentRow reports head count against capacity for a class.
type EnrollmentRow struct {
	ClassName    string  `db:"class_name"`
	GradeLevel   int     `db:"grade_level"`
	Stream       *string `db:"stream"`
	AcademicYear string  `db:"academic_year"`
	Capacity     int     `db:"capacity"`
	Students     int     `db:"students"`
	Utilization  float64 `db:"utilization"`
}
