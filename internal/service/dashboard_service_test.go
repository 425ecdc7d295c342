package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type fixedCounter struct {
	n     int
	err   error
	calls int32
}

func (f *fixedCounter) Count(context.Context) (int, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.n, f.err
}

type fixedRoleCounter struct {
	n     int
	roles []models.UserRole
}

func (f *fixedRoleCounter) CountByRoles(_ context.Context, roles []models.UserRole) (int, error) {
	f.roles = roles
	return f.n, nil
}

type fakeRecent struct {
	rows  []models.AnnouncementDetail
	limit int
}

func (f *fakeRecent) Recent(_ context.Context, _ *models.Session, limit int) ([]models.AnnouncementDetail, error) {
	f.limit = limit
	return f.rows, nil
}

func dashboardFixture(cache *CacheService) (*DashboardService, *fixedCounter, *fixedRoleCounter, *fakeRecent) {
	students := &fixedCounter{n: 420}
	teachers := &fixedRoleCounter{n: 18}
	recent := &fakeRecent{rows: []models.AnnouncementDetail{{Announcement: models.Announcement{ID: "a1", Title: "Sports day"}}}}
	svc := NewDashboardService(DashboardServiceParams{
		Students:      students,
		Profiles:      teachers,
		Classes:       &fixedCounter{n: 12},
		Subjects:      &fixedCounter{n: 9},
		Announcements: recent,
		Cache:         cache,
		Logger:        zap.NewNop(),
	})
	return svc, students, teachers, recent
}

func TestDashboardSummaryComposesAndCaches(t *testing.T) {
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc, students, teachers, recent := dashboardFixture(cache)
	session := &models.Session{ProfileID: "p1", Role: models.RoleClassTeacher}

	summary, hit, err := svc.Summary(context.Background(), session)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, models.DashboardCounts{Students: 420, Teachers: 18, Classes: 12, Subjects: 9}, summary.Counts)
	assert.ElementsMatch(t, models.TeachingRoles, teachers.roles)
	assert.Equal(t, 5, recent.limit)
	assert.Len(t, summary.RecentAnnouncements, 1)
	assert.Equal(t, "Class Teacher", summary.Badge.Label)
	assert.Contains(t, summary.WelcomeMessage, "class teacher")
	assert.NotEmpty(t, summary.QuickActions)

	again, hit, err := svc.Summary(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, summary.Counts, again.Counts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&students.calls))
}

func TestDashboardCountsWithoutCache(t *testing.T) {
	svc, students, _, _ := dashboardFixture(nil)

	_, hit, err := svc.Counts(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	_, _, err = svc.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&students.calls))
}

func TestDashboardCountFailure(t *testing.T) {
	svc, students, _, _ := dashboardFixture(nil)
	students.err = errors.New("db down")

	_, _, err := svc.Summary(context.Background(), &models.Session{ProfileID: "p1", Role: models.RoleAdmin})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))
}

func TestDashboardUnknownRoleFallsBack(t *testing.T) {
	svc, _, _, _ := dashboardFixture(nil)

	summary, _, err := svc.Summary(context.Background(), &models.Session{ProfileID: "p1", Role: "parent"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to the Kenya CBC School System.", summary.WelcomeMessage)
	assert.Empty(t, summary.QuickActions)
}
