package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type fakeCalendarRepo struct {
	events     []models.CalendarEvent
	lastFilter *models.CalendarFilter
	created    *models.CalendarEvent
}

func (f *fakeCalendarRepo) List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error) {
	f.lastFilter = &filter
	var out []models.CalendarEvent
	for _, event := range f.events {
		if filter.From != nil && event.EventDate.Before(*filter.From) {
			continue
		}
		out = append(out, event)
	}
	return out, len(out), nil
}

func (f *fakeCalendarRepo) Create(ctx context.Context, event *models.CalendarEvent) error {
	event.ID = "event-new"
	f.created = event
	return nil
}

func calendarFixture(now time.Time) (*CalendarService, *fakeCalendarRepo) {
	repo := &fakeCalendarRepo{events: []models.CalendarEvent{
		{ID: "e-past", EventDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), IsSchoolWide: true},
		{ID: "e-today", EventDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), IsSchoolWide: true},
		{ID: "e-next", EventDate: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), TargetClasses: []string{classA}},
	}}
	scopes := staticScopes{
		"admin":   {Unrestricted: true},
		"student": {ClassIDs: []string{classA}, Student: true, StudentID: stuA},
	}
	return NewCalendarService(repo, scopes, &recordingAudit{}, NewViewComposer(fixedClock(now)), nil, nil), repo
}

func TestCalendarUpcomingAndToday(t *testing.T) {
	svc, repo := calendarFixture(time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC))
	student := &models.Session{ProfileID: "student", Role: models.RoleStudent}

	view, err := svc.List(context.Background(), student, CalendarQuery{Upcoming: true})
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "e-today", view.Items[0].ID)
	assert.True(t, view.Items[0].IsToday)
	assert.False(t, view.Items[1].IsToday)
	assert.False(t, view.CanEdit)
	assert.Equal(t, models.ClassScope{Restricted: true, ClassIDs: []string{classA}}, repo.lastFilter.Scope)
	assert.Equal(t, "2024-03-04", repo.lastFilter.From.Format("2006-01-02"))

	later := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	_, err = svc.List(context.Background(), student, CalendarQuery{Upcoming: true, From: &later})
	require.NoError(t, err)
	assert.Equal(t, later, *repo.lastFilter.From)
}

func TestCalendarAdminSeesAll(t *testing.T) {
	svc, repo := calendarFixture(time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC))

	view, err := svc.List(context.Background(), &models.Session{ProfileID: "admin", Role: models.RoleAdmin}, CalendarQuery{})
	require.NoError(t, err)
	assert.Len(t, view.Items, 3)
	assert.True(t, view.CanEdit)
	assert.False(t, repo.lastFilter.Scope.Restricted)
	assert.Nil(t, repo.lastFilter.From)
}

func TestCalendarCreate(t *testing.T) {
	svc, repo := calendarFixture(time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC))
	admin := &models.Session{ProfileID: "admin", Role: models.RoleAdmin}
	student := &models.Session{ProfileID: "student", Role: models.RoleStudent}
	req := CreateEventRequest{
		Title:       "Inter-house games",
		Description: strPtr("<i>Bring</i> kit"),
		EventDate:   "2024-03-15",
		EventType:   "sports",
		StartTime:   strPtr("09:00"),
		EndTime:     strPtr("15:30"),
	}

	_, err := svc.Create(context.Background(), student, req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	badType := req
	badType.EventType = "party"
	_, err = svc.Create(context.Background(), admin, badType)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	classOnly := req
	classOnly.IsSchoolWide = boolPtr(false)
	_, err = svc.Create(context.Background(), admin, classOnly)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	created, err := svc.Create(context.Background(), admin, req)
	require.NoError(t, err)
	assert.True(t, created.IsSchoolWide)
	assert.Equal(t, "Bring kit", *created.Description)
	assert.Equal(t, models.EventSports, repo.created.EventType)
}
