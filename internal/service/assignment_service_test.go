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

type fakeAssignmentRepo struct {
	assignments map[string]models.Assignment
	submissions map[string]models.AssignmentSubmission
	lastFilter  *models.AssignmentFilter
}

func (f *fakeAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error) {
	f.lastFilter = &filter
	var out []models.AssignmentDetail
	for _, a := range f.assignments {
		if filter.Scope.Restricted && !containsString(filter.Scope.ClassIDs, a.ClassID) {
			continue
		}
		detail := models.AssignmentDetail{Assignment: a}
		if filter.StudentID != "" {
			_, detail.Submitted = f.submissions[a.ID+"|"+filter.StudentID]
		}
		out = append(out, detail)
	}
	return out, len(out), nil
}

func (f *fakeAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, errNoRows
	}
	return &a, nil
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = "assignment-new"
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) UpsertSubmission(ctx context.Context, submission *models.AssignmentSubmission) (*models.AssignmentSubmission, error) {
	key := submission.AssignmentID + "|" + submission.StudentID
	if existing, ok := f.submissions[key]; ok {
		submission.ID = existing.ID
	} else {
		submission.ID = "sub-" + key
	}
	f.submissions[key] = *submission
	stored := *submission
	return &stored, nil
}

func (f *fakeAssignmentRepo) ListSubmissions(ctx context.Context, assignmentID string) ([]models.SubmissionDetail, error) {
	var out []models.SubmissionDetail
	for _, sub := range f.submissions {
		if sub.AssignmentID == assignmentID {
			out = append(out, models.SubmissionDetail{AssignmentSubmission: sub})
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) GradeSubmission(ctx context.Context, assignmentID, submissionID string, marks *float64, feedback *string) (*models.AssignmentSubmission, error) {
	for key, sub := range f.submissions {
		if sub.ID == submissionID && sub.AssignmentID == assignmentID {
			sub.MarksObtained, sub.Feedback = marks, feedback
			f.submissions[key] = sub
			return &sub, nil
		}
	}
	return nil, errNoRows
}

func assignmentFixture() (*AssignmentService, *fakeAssignmentRepo) {
	repo := &fakeAssignmentRepo{
		assignments: map[string]models.Assignment{
			"hw-past":   {ID: "hw-past", ClassID: classA, DueDate: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), TotalMarks: 20},
			"hw-today":  {ID: "hw-today", ClassID: classA, DueDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), TotalMarks: 20},
			"hw-others": {ID: "hw-others", ClassID: classB, DueDate: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), TotalMarks: 20},
		},
		submissions: map[string]models.AssignmentSubmission{},
	}
	scopes := staticScopes{
		"admin":   {Unrestricted: true},
		"teacher": {ClassIDs: []string{classA}},
		"student": {ClassIDs: []string{classA}, Student: true, StudentID: stuA},
	}
	clock := NewViewComposer(fixedClock(time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)))
	return NewAssignmentService(repo, scopes, &recordingAudit{}, clock, nil, nil), repo
}

func TestAssignmentListOverdueAndSubmitted(t *testing.T) {
	svc, repo := assignmentFixture()
	student := &models.Session{ProfileID: "student", Role: models.RoleStudent}

	_, err := svc.Submit(context.Background(), student, "hw-today", SubmitAssignmentRequest{SubmissionText: strPtr("My essay")})
	require.NoError(t, err)

	rows, _, err := svc.List(context.Background(), student, AssignmentQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	byID := map[string]models.AssignmentDetail{}
	for _, row := range rows {
		byID[row.ID] = row
	}
	assert.True(t, byID["hw-past"].IsOverdue)
	assert.False(t, byID["hw-today"].IsOverdue)
	assert.True(t, byID["hw-today"].Submitted)
	assert.False(t, byID["hw-past"].Submitted)
	assert.Equal(t, stuA, repo.lastFilter.StudentID)
}

func TestAssignmentCreateSanitizesDescription(t *testing.T) {
	svc, repo := assignmentFixture()
	teacher := &models.Session{ProfileID: "teacher", Role: models.RoleCommonTeacher}
	req := CreateAssignmentRequest{
		ClassID:     classA,
		SubjectID:   subjectMath,
		Title:       "Fractions",
		Description: strPtr(`<script>alert(1)</script><b>Page 12</b>`),
		DueDate:     "2024-03-11",
	}

	created, err := svc.Create(context.Background(), teacher, req)
	require.NoError(t, err)
	assert.Equal(t, "Page 12", *created.Description)
	assert.Equal(t, defaultAssignmentMarks, created.TotalMarks)
	assert.Equal(t, "teacher", *repo.assignments["assignment-new"].TeacherID)

	req.ClassID = classB
	_, err = svc.Create(context.Background(), teacher, req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	student := &models.Session{ProfileID: "student", Role: models.RoleStudent}
	_, err = svc.Create(context.Background(), student, req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))
}

func TestAssignmentSubmitRules(t *testing.T) {
	svc, repo := assignmentFixture()
	student := &models.Session{ProfileID: "student", Role: models.RoleStudent}
	teacher := &models.Session{ProfileID: "teacher", Role: models.RoleClassTeacher}

	_, err := svc.Submit(context.Background(), teacher, "hw-today", SubmitAssignmentRequest{SubmissionText: strPtr("x")})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	_, err = svc.Submit(context.Background(), student, "hw-others", SubmitAssignmentRequest{SubmissionText: strPtr("x")})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	_, err = svc.Submit(context.Background(), student, "hw-today", SubmitAssignmentRequest{})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	first, err := svc.Submit(context.Background(), student, "hw-today", SubmitAssignmentRequest{SubmissionText: strPtr("draft")})
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), student, "hw-today", SubmitAssignmentRequest{SubmissionText: strPtr("final")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.submissions, 1)
}

func TestAssignmentGradeSubmission(t *testing.T) {
	svc, _ := assignmentFixture()
	student := &models.Session{ProfileID: "student", Role: models.RoleStudent}
	teacher := &models.Session{ProfileID: "teacher", Role: models.RoleClassTeacher}

	sub, err := svc.Submit(context.Background(), student, "hw-today", SubmitAssignmentRequest{SubmissionText: strPtr("answer")})
	require.NoError(t, err)

	_, err = svc.Submissions(context.Background(), student, "hw-today")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	rows, err := svc.Submissions(context.Background(), teacher, "hw-today")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Grade(context.Background(), teacher, "hw-today", sub.ID, GradeSubmissionRequest{MarksObtained: floatPtr(25)})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	graded, err := svc.Grade(context.Background(), teacher, "hw-today", sub.ID, GradeSubmissionRequest{MarksObtained: floatPtr(18), Feedback: strPtr("Well done")})
	require.NoError(t, err)
	assert.Equal(t, 18.0, *graded.MarksObtained)

	_, err = svc.Grade(context.Background(), teacher, "hw-today", "missing", GradeSubmissionRequest{MarksObtained: floatPtr(1)})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	rows, err = svc.Submissions(context.Background(), teacher, "hw-others")
	assert.Nil(t, rows)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))
}
