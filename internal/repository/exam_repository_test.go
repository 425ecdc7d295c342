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

var examResultColumns = []string{"id", "exam_id", "student_id", "marks_obtained", "effort_level", "feedback", "created_at", "updated_at"}

func TestExamRepositoryUpsertResultKeepsOneRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (exam_id, student_id) DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained")).
		WillReturnRows(sqlmock.NewRows(examResultColumns).AddRow("res-1", "exam-1", "student-1", 35.0, "good", nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (exam_id, student_id) DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained")).
		WillReturnRows(sqlmock.NewRows(examResultColumns).AddRow("res-1", "exam-1", "student-1", 41.0, "excellent", nil, now, now))

	first := 35.0
	stored, err := repo.UpsertResult(context.Background(), &models.ExamResult{ExamID: "exam-1", StudentID: "student-1", MarksObtained: &first})
	require.NoError(t, err)
	second := 41.0
	again, err := repo.UpsertResult(context.Background(), &models.ExamResult{ExamID: "exam-1", StudentID: "student-1", MarksObtained: &second})
	require.NoError(t, err)

	assert.Equal(t, stored.ID, again.ID)
	require.NotNil(t, again.EffortLevel)
	assert.Equal(t, models.EffortExcellent, *again.EffortLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListResultsForcesStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.class_id = ANY($1) AND r.student_id = $2")).
		WithArgs(sqlmock.AnyArg(), "student-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM exam_results r JOIN exams e ON e.id = r.exam_id WHERE e.class_id = ANY($1) AND r.student_id = $2")).
		WithArgs(sqlmock.AnyArg(), "student-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	results, total, err := repo.ListResults(context.Background(), models.ExamResultFilter{
		Scope:     models.ClassScope{Restricted: true, ClassIDs: []string{"class-1"}},
		StudentID: "student-1",
	})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
