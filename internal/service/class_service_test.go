package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type fakeClassRepo struct {
	classes    map[string]models.Class
	lastFilter *models.ClassFilter
	listCalls  int
}

func (f *fakeClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	f.listCalls++
	f.lastFilter = &filter
	var out []models.ClassDetail
	for _, class := range f.classes {
		if filter.Scope.Restricted && !containsString(filter.Scope.ClassIDs, class.ID) {
			continue
		}
		out = append(out, models.ClassDetail{Class: class})
	}
	return out, len(out), nil
}

func (f *fakeClassRepo) FindByID(ctx context.Context, id string) (*models.ClassDetail, error) {
	class, ok := f.classes[id]
	if !ok {
		return nil, errNoRows
	}
	return &models.ClassDetail{Class: class}, nil
}

func (f *fakeClassRepo) Create(ctx context.Context, class *models.Class) error {
	class.ID = "class-new"
	f.classes[class.ID] = *class
	return nil
}

func (f *fakeClassRepo) Update(ctx context.Context, class *models.Class) error {
	if _, ok := f.classes[class.ID]; !ok {
		return errNoRows
	}
	f.classes[class.ID] = *class
	return nil
}

func (f *fakeClassRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.classes[id]; !ok {
		return errNoRows
	}
	delete(f.classes, id)
	return nil
}

type fakeProfiles struct {
	profiles   map[string]*models.Profile
	lastFilter *models.ProfileFilter
}

func (f *fakeProfiles) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, errNoRows
	}
	return p, nil
}

func (f *fakeProfiles) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	f.lastFilter = &filter
	var out []models.Profile
	for _, p := range f.profiles {
		for _, role := range filter.Roles {
			if p.Role == role {
				out = append(out, *p)
			}
		}
	}
	return out, len(out), nil
}

const (
	teacherProfileID = "44444444-4444-4444-4444-444444444444"
	studentProfileID = "55555555-5555-5555-5555-555555555555"
)

func classFixture() (*ClassService, *fakeClassRepo, *fakeProfiles) {
	repo := &fakeClassRepo{classes: map[string]models.Class{
		classA: {ID: classA, Name: "Grade 4 East", GradeLevel: 4},
		classB: {ID: classB, Name: "Grade 5 West", GradeLevel: 5},
	}}
	profiles := &fakeProfiles{profiles: map[string]*models.Profile{
		teacherProfileID: {ID: teacherProfileID, Role: models.RoleCommonTeacher},
		studentProfileID: {ID: studentProfileID, Role: models.RoleStudent},
	}}
	scopes := staticScopes{
		"admin":   {Unrestricted: true},
		"sub":     {Unrestricted: true},
		"teacher": {ClassIDs: []string{classA}},
		"new":     {ClassIDs: []string{}},
	}
	return NewClassService(repo, profiles, scopes, &recordingAudit{}, nil, nil), repo, profiles
}

func TestClassListScopedToTeacher(t *testing.T) {
	svc, repo, _ := classFixture()
	teacher := &models.Session{ProfileID: "teacher", Role: models.RoleClassTeacher}

	classes, pagination, err := svc.List(context.Background(), teacher, ClassQuery{})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, classA, classes[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)

	fresh := &models.Session{ProfileID: "new", Role: models.RoleInternTeacher}
	classes, _, err = svc.List(context.Background(), fresh, ClassQuery{})
	require.NoError(t, err)
	assert.Empty(t, classes)
	assert.Equal(t, 1, repo.listCalls)
}

func TestClassGetOutsideScopeIsNotFound(t *testing.T) {
	svc, _, _ := classFixture()
	teacher := &models.Session{ProfileID: "teacher", Role: models.RoleClassTeacher}

	_, err := svc.Get(context.Background(), teacher, classB)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	class, err := svc.Get(context.Background(), teacher, classA)
	require.NoError(t, err)
	assert.Equal(t, "Grade 4 East", class.Name)
}

func TestClassCreateValidatesOwner(t *testing.T) {
	svc, repo, _ := classFixture()
	sub := &models.Session{ProfileID: "sub", Role: models.RoleSubAdmin}
	req := ClassRequest{Name: "Grade 6 North", GradeLevel: 6, AcademicYear: "2024"}

	withStudent := req
	withStudent.ClassTeacherID = strPtr(studentProfileID)
	_, err := svc.Create(context.Background(), sub, withStudent)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	unknown := req
	unknown.ClassTeacherID = strPtr("66666666-6666-6666-6666-666666666666")
	_, err = svc.Create(context.Background(), sub, unknown)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	withTeacher := req
	withTeacher.ClassTeacherID = strPtr(teacherProfileID)
	created, err := svc.Create(context.Background(), sub, withTeacher)
	require.NoError(t, err)
	assert.Equal(t, defaultClassCapacity, created.Capacity)
	assert.Equal(t, teacherProfileID, *repo.classes["class-new"].ClassTeacherID)
}

func TestClassMutationsRequireRole(t *testing.T) {
	svc, _, _ := classFixture()
	teacher := &models.Session{ProfileID: "teacher", Role: models.RoleClassTeacher}
	sub := &models.Session{ProfileID: "sub", Role: models.RoleSubAdmin}
	admin := &models.Session{ProfileID: "admin", Role: models.RoleAdmin}
	req := ClassRequest{Name: "Grade 4 East", GradeLevel: 4, AcademicYear: "2024", Capacity: 35}

	_, err := svc.Create(context.Background(), teacher, req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	_, err = svc.Update(context.Background(), sub, classA, req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))
	assert.True(t, appErrors.IsCode(svc.Delete(context.Background(), sub, classA), appErrors.ErrForbidden.Code))

	updated, err := svc.Update(context.Background(), admin, classA, req)
	require.NoError(t, err)
	assert.Equal(t, 35, updated.Capacity)

	_, err = svc.Update(context.Background(), admin, "missing", req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	require.NoError(t, svc.Delete(context.Background(), admin, classB))
}

func TestClassTeachersListsOwnerRoles(t *testing.T) {
	svc, _, profiles := classFixture()
	admin := &models.Session{ProfileID: "admin", Role: models.RoleAdmin}

	teachers, err := svc.Teachers(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, teacherProfileID, teachers[0].ID)
	assert.ElementsMatch(t, []models.UserRole{models.RoleClassTeacher, models.RoleCommonTeacher}, profiles.lastFilter.Roles)
	assert.True(t, *profiles.lastFilter.Active)
}
