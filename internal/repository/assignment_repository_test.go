package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

func TestAssignmentRepositoryListMarksSubmitted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	due := time.Now().Add(48 * time.Hour)
	columns := []string{"id", "class_id", "subject_id", "teacher_id", "title", "description", "due_date", "total_marks", "created_at",
		"class_name", "subject_name", "teacher_name", "submitted"}
	mock.ExpectQuery(regexp.QuoteMeta("sub.student_id::text = $1) AS submitted")).
		WithArgs("student-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("as-1", "class-1", "sub-1", "teacher-1", "Fractions worksheet", nil, due, 20, time.Now(), "Grade 4 East", "Mathematics", "Jane Wanjiku", true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assignments a WHERE a.class_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows, total, err := repo.List(context.Background(), models.AssignmentFilter{
		Scope:     models.ClassScope{Restricted: true, ClassIDs: []string{"class-1"}},
		StudentID: "student-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Submitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
