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

type fakeExamRepo struct {
	exams        map[string]models.Exam
	results      map[string]models.ExamResult
	lastFilter   *models.ExamResultFilter
	resultsCalls int
}

func (f *fakeExamRepo) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, int, error) {
	var out []models.ExamDetail
	for _, exam := range f.exams {
		if filter.Scope.Restricted && !containsString(filter.Scope.ClassIDs, exam.ClassID) {
			continue
		}
		out = append(out, models.ExamDetail{Exam: exam})
	}
	return out, len(out), nil
}

func (f *fakeExamRepo) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, errNoRows
	}
	return &exam, nil
}

func (f *fakeExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	exam.ID = "exam-new"
	f.exams[exam.ID] = *exam
	return nil
}

func (f *fakeExamRepo) ListResults(ctx context.Context, filter models.ExamResultFilter) ([]models.ExamResultDetail, int, error) {
	f.resultsCalls++
	f.lastFilter = &filter
	var out []models.ExamResultDetail
	for _, result := range f.results {
		if filter.StudentID != "" && result.StudentID != filter.StudentID {
			continue
		}
		if filter.Scope.Restricted && !containsString(filter.Scope.ClassIDs, f.exams[result.ExamID].ClassID) {
			continue
		}
		out = append(out, models.ExamResultDetail{ExamResult: result})
	}
	return out, len(out), nil
}

func (f *fakeExamRepo) UpsertResult(ctx context.Context, result *models.ExamResult) (*models.ExamResult, error) {
	key := result.ExamID + "|" + result.StudentID
	if existing, ok := f.results[key]; ok {
		result.ID = existing.ID
	} else {
		result.ID = "result-" + key
	}
	f.results[key] = *result
	stored := *result
	return &stored, nil
}

const examToday = "88888888-8888-8888-8888-888888888888"

func examFixture(now time.Time) (*ExamService, *fakeExamRepo) {
	repo := &fakeExamRepo{
		exams: map[string]models.Exam{
			examToday: {ID: examToday, ClassID: classA, ExamDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), TotalMarks: 50},
			"exam-b":  {ID: "exam-b", ClassID: classB, ExamDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), TotalMarks: 100},
		},
		results: map[string]models.ExamResult{
			examToday + "|" + stuA: {ID: "r-a", ExamID: examToday, StudentID: stuA},
			examToday + "|" + stuB: {ID: "r-b", ExamID: examToday, StudentID: stuB},
		},
	}
	students := fakeStudentDirectory{students: map[string]*models.StudentDetail{
		stuA: {Student: models.Student{ID: stuA, ClassID: strPtr(classA)}},
		stuB: {Student: models.Student{ID: stuB, ClassID: strPtr(classB)}},
	}}
	scopes := staticScopes{
		"admin":    {Unrestricted: true},
		"teacher":  {ClassIDs: []string{classA}},
		"student":  {ClassIDs: []string{classA}, Student: true, StudentID: stuA},
		"moved":    {ClassIDs: []string{classB}, Student: true, StudentID: stuA},
		"unplaced": {Student: true, StudentID: stuA},
	}
	return NewExamService(repo, students, scopes, &recordingAudit{}, NewViewComposer(fixedClock(now)), nil, nil), repo
}

func TestExamStatusMovesFromTodayToCompleted(t *testing.T) {
	teacher := &models.Session{ProfileID: "teacher", Role: models.RoleClassTeacher}

	svc, _ := examFixture(time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC))
	exams, _, err := svc.List(context.Background(), teacher, ExamQuery{})
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, models.ExamStatusToday, exams[0].Status)

	svc, _ = examFixture(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	exams, _, err = svc.List(context.Background(), teacher, ExamQuery{})
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, models.ExamStatusCompleted, exams[0].Status)
}

func TestExamResultsStudentOnlySeesOwnRows(t *testing.T) {
	svc, repo := examFixture(time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC))
	student := &models.Session{ProfileID: "student", Role: models.RoleStudent}

	results, _, err := svc.Results(context.Background(), student, ExamResultQuery{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, stuA, results[0].StudentID)
	assert.Equal(t, stuA, repo.lastFilter.StudentID)

	results, _, err = svc.Results(context.Background(), student, ExamResultQuery{StudentID: stuB})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 1, repo.resultsCalls)
}

func TestExamResultsFollowStudentAcrossClasses(t *testing.T) {
	svc, repo := examFixture(time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC))

	for _, profile := range []string{"moved", "unplaced"} {
		session := &models.Session{ProfileID: profile, Role: models.RoleStudent}
		results, _, err := svc.Results(context.Background(), session, ExamResultQuery{})
		require.NoError(t, err, profile)
		require.Len(t, results, 1, profile)
		assert.Equal(t, "r-a", results[0].ID, profile)
		assert.False(t, repo.lastFilter.Scope.Restricted, profile)
		assert.Equal(t, stuA, repo.lastFilter.StudentID, profile)
	}
	assert.Equal(t, 2, repo.resultsCalls)
}

func TestExamCreateWithinScope(t *testing.T) {
	svc, _ := examFixture(time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC))
	teacher := &models.Session{ProfileID: "teacher", Role: models.RoleCommonTeacher}
	student := &models.Session{ProfileID: "student", Role: models.RoleStudent}
	req := CreateExamRequest{
		Name:       "End of term",
		ClassID:    classB,
		SubjectID:  subjectMath,
		ExamDate:   "2024-04-01",
		TotalMarks: 100,
	}

	_, err := svc.Create(context.Background(), student, req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	_, err = svc.Create(context.Background(), teacher, req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	req.ClassID = classA
	exam, err := svc.Create(context.Background(), teacher, req)
	require.NoError(t, err)
	assert.Equal(t, "teacher", *exam.CreatedBy)
	assert.Equal(t, 2024, exam.ExamDate.Year())
}

func TestExamUpsertResult(t *testing.T) {
	svc, repo := examFixture(time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC))
	teacher := &models.Session{ProfileID: "teacher", Role: models.RoleClassTeacher}
	effort := "excellent"

	_, err := svc.UpsertResult(context.Background(), teacher, UpsertResultRequest{ExamID: examToday, StudentID: stuB, MarksObtained: floatPtr(30)})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.UpsertResult(context.Background(), teacher, UpsertResultRequest{ExamID: examToday, StudentID: stuA, MarksObtained: floatPtr(70)})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	bad := "brilliant"
	_, err = svc.UpsertResult(context.Background(), teacher, UpsertResultRequest{ExamID: examToday, StudentID: stuA, EffortLevel: &bad})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	stored, err := svc.UpsertResult(context.Background(), teacher, UpsertResultRequest{ExamID: examToday, StudentID: stuA, MarksObtained: floatPtr(42), EffortLevel: &effort})
	require.NoError(t, err)
	assert.Equal(t, "r-a", stored.ID)
	assert.Equal(t, models.EffortExcellent, *stored.EffortLevel)
	assert.Len(t, repo.results, 2)

	_, err = svc.UpsertResult(context.Background(), teacher, UpsertResultRequest{ExamID: "99999999-9999-9999-9999-999999999999", StudentID: stuA})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}
