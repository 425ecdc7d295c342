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

var attendanceRowColumns = []string{"id", "student_id", "class_id", "date", "is_present", "marked_by", "remarks", "created_at", "updated_at"}

func TestAttendanceRepositoryUpsertOverwritesSameDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, date) DO UPDATE SET")).
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns).
			AddRow("att-1", "student-1", "class-1", day, false, "teacher-1", nil, now, now))

	marker := "teacher-1"
	stored, err := repo.Upsert(context.Background(), &models.AttendanceRecord{
		StudentID: "student-1", ClassID: "class-1", Date: day, IsPresent: false, MarkedBy: &marker,
	})
	require.NoError(t, err)
	assert.Equal(t, "att-1", stored.ID)
	assert.False(t, stored.IsPresent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO attendance").
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns).AddRow("a1", "s1", "class-1", day, true, nil, nil, now, now))
	mock.ExpectQuery("INSERT INTO attendance").
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns).AddRow("a2", "s2", "class-1", day, false, nil, nil, now, now))
	mock.ExpectCommit()

	stored, err := repo.BulkUpsert(context.Background(), []models.AttendanceRecord{
		{StudentID: "s1", ClassID: "class-1", Date: day, IsPresent: true},
		{StudentID: "s2", ClassID: "class-1", Date: day, IsPresent: false},
	})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO attendance").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.BulkUpsert(context.Background(), []models.AttendanceRecord{{StudentID: "s1", ClassID: "class-1", Date: time.Now()}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE a.is_present) AS present FROM attendance a WHERE a.student_id = $1")).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "present"}).AddRow(10, 9))

	counts, err := repo.Counts(context.Background(), models.AttendanceFilter{StudentID: "student-1"})
	require.NoError(t, err)
	assert.Equal(t, 10, counts.Total)
	assert.Equal(t, 9, counts.Present)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListEmptyScope(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows, total, err := repo.List(context.Background(), models.AttendanceFilter{Scope: models.ClassScope{Restricted: true}})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
