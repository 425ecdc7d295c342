package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

var classRowColumns = []string{"id", "name", "grade_level", "stream", "academic_year", "capacity", "class_teacher_id", "created_at", "updated_at", "class_teacher_name", "student_count"}

func TestClassRepositoryListScoped(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.id = ANY($1) ORDER BY c.grade_level ASC, c.name ASC LIMIT 20 OFFSET 0")).
		WithArgs(pq.Array([]string{"class-1"})).
		WillReturnRows(sqlmock.NewRows(classRowColumns).
			AddRow("class-1", "Grade 4 East", 4, "East", "2024", 40, "teacher-1", now, now, "Jane Wanjiku", 31))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes c WHERE c.id = ANY($1)")).
		WithArgs(pq.Array([]string{"class-1"})).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{
		Scope: models.ClassScope{Restricted: true, ClassIDs: []string{"class-1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, classes, 1)
	assert.Equal(t, 31, classes[0].StudentCount)
	require.NotNil(t, classes[0].ClassTeacherName)
	assert.Equal(t, "Jane Wanjiku", *classes[0].ClassTeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListEmptyScopeSkipsQuery(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	classes, total, err := repo.List(context.Background(), models.ClassFilter{Scope: models.ClassScope{Restricted: true}})
	require.NoError(t, err)
	assert.Empty(t, classes)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("UPDATE classes SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Class{ID: "missing", Name: "X", GradeLevel: 1})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryTeacherClassIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM classes WHERE class_teacher_id = $1 UNION SELECT class_id FROM teacher_subjects WHERE teacher_id = $1")).
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("class-1").AddRow("class-2"))

	ids, err := repo.TeacherClassIDs(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"class-1", "class-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
