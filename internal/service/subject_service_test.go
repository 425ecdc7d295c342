package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type fakeSubjectRepo struct {
	subjects   map[string]models.Subject
	links      []models.TeacherSubject
	lastFilter *models.SubjectFilter
	listCalls  int
}

func (f *fakeSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	f.listCalls++
	f.lastFilter = &filter
	var out []models.Subject
	for _, subject := range f.subjects {
		if filter.GradeLevel != nil && subject.GradeLevel != *filter.GradeLevel {
			continue
		}
		out = append(out, subject)
	}
	return out, len(out), nil
}

func (f *fakeSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := f.subjects[id]
	if !ok {
		return nil, errNoRows
	}
	return &subject, nil
}

func (f *fakeSubjectRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	for _, subject := range f.subjects {
		if strings.EqualFold(subject.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = "subject-new"
	f.subjects[subject.ID] = *subject
	return nil
}

func (f *fakeSubjectRepo) Assign(ctx context.Context, assignment *models.TeacherSubject) error {
	assignment.ID = "link-1"
	f.links = append(f.links, *assignment)
	return nil
}

const subjectMath = "77777777-7777-7777-7777-777777777777"

func subjectFixture() (*SubjectService, *fakeSubjectRepo) {
	repo := &fakeSubjectRepo{subjects: map[string]models.Subject{
		subjectMath: {ID: subjectMath, Name: "Mathematics", Code: "MATH4", GradeLevel: 4},
		"english-5": {ID: "english-5", Name: "English", Code: "ENG5", GradeLevel: 5},
	}}
	classes := &fakeClassRepo{classes: map[string]models.Class{
		classA: {ID: classA, GradeLevel: 4},
	}}
	profiles := &fakeProfiles{profiles: map[string]*models.Profile{
		teacherProfileID: {ID: teacherProfileID, Role: models.RoleCommonTeacher},
		studentProfileID: {ID: studentProfileID, Role: models.RoleStudent},
	}}
	return NewSubjectService(repo, classes, profiles, &recordingAudit{}, nil, nil), repo
}

func TestSubjectListStudentNarrowedToGrade(t *testing.T) {
	svc, repo := subjectFixture()
	student := &models.Session{ProfileID: "student", Role: models.RoleStudent, ClassID: strPtr(classA)}

	subjects, _, err := svc.List(context.Background(), student, SubjectQuery{})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Mathematics", subjects[0].Name)
	assert.Equal(t, 4, *repo.lastFilter.GradeLevel)

	subjects, _, err = svc.List(context.Background(), student, SubjectQuery{GradeLevel: intPtr(5)})
	require.NoError(t, err)
	assert.Empty(t, subjects)
	assert.Equal(t, 1, repo.listCalls)

	unplaced := &models.Session{ProfileID: "student-2", Role: models.RoleStudent}
	subjects, _, err = svc.List(context.Background(), unplaced, SubjectQuery{})
	require.NoError(t, err)
	assert.Empty(t, subjects)
	assert.Equal(t, 1, repo.listCalls)
}

func TestSubjectListMineForTeachers(t *testing.T) {
	svc, repo := subjectFixture()
	teacher := &models.Session{ProfileID: teacherProfileID, Role: models.RoleCommonTeacher}
	admin := &models.Session{ProfileID: "admin", Role: models.RoleAdmin}

	_, _, err := svc.List(context.Background(), teacher, SubjectQuery{Mine: true})
	require.NoError(t, err)
	assert.Equal(t, teacherProfileID, repo.lastFilter.TeacherID)

	_, _, err = svc.List(context.Background(), admin, SubjectQuery{Mine: true})
	require.NoError(t, err)
	assert.Empty(t, repo.lastFilter.TeacherID)
}

func TestSubjectCreate(t *testing.T) {
	svc, _ := subjectFixture()
	admin := &models.Session{ProfileID: "admin", Role: models.RoleAdmin}
	teacher := &models.Session{ProfileID: teacherProfileID, Role: models.RoleClassTeacher}

	_, err := svc.Create(context.Background(), teacher, CreateSubjectRequest{Name: "Science", Code: "SCI4", GradeLevel: 4})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	_, err = svc.Create(context.Background(), admin, CreateSubjectRequest{Name: "Maths", Code: "math4", GradeLevel: 4})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrConflict.Code))

	created, err := svc.Create(context.Background(), admin, CreateSubjectRequest{Name: " Science ", Code: "sci4", GradeLevel: 4})
	require.NoError(t, err)
	assert.Equal(t, "SCI4", created.Code)
	assert.Equal(t, "Science", created.Name)
}

func TestSubjectAssign(t *testing.T) {
	svc, repo := subjectFixture()
	admin := &models.Session{ProfileID: "admin", Role: models.RoleSubAdmin}

	_, err := svc.Assign(context.Background(), admin, AssignSubjectRequest{TeacherID: studentProfileID, SubjectID: subjectMath, ClassID: classA})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Assign(context.Background(), admin, AssignSubjectRequest{TeacherID: teacherProfileID, SubjectID: subjectMath, ClassID: classB})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	link, err := svc.Assign(context.Background(), admin, AssignSubjectRequest{TeacherID: teacherProfileID, SubjectID: subjectMath, ClassID: classA})
	require.NoError(t, err)
	assert.Equal(t, "link-1", link.ID)
	require.Len(t, repo.links, 1)
}
