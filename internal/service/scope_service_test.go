package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type stubTeacherClasses struct {
	ids map[string][]string
	err error
}

func (s stubTeacherClasses) TeacherClassIDs(ctx context.Context, teacherID string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ids[teacherID], nil
}

func TestScopeServiceResolve(t *testing.T) {
	svc := NewScopeService(stubTeacherClasses{ids: map[string][]string{"t1": {"c1", "c2"}}}, nil)
	ctx := context.Background()

	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleSubAdmin} {
		scope, err := svc.Resolve(ctx, &models.Session{ProfileID: "x", Role: role})
		require.NoError(t, err)
		assert.True(t, scope.Unrestricted, role)
	}

	for _, role := range models.TeachingRoles {
		scope, err := svc.Resolve(ctx, &models.Session{ProfileID: "t1", Role: role})
		require.NoError(t, err)
		assert.False(t, scope.Unrestricted)
		assert.Equal(t, []string{"c1", "c2"}, scope.ClassIDs)
	}

	scope, err := svc.Resolve(ctx, &models.Session{ProfileID: "p", Role: models.RoleStudent, StudentID: strPtr("s1"), ClassID: strPtr("c9")})
	require.NoError(t, err)
	assert.Equal(t, models.Scope{ClassIDs: []string{"c9"}, Student: true, StudentID: "s1"}, scope)

	scope, err = svc.Resolve(ctx, &models.Session{ProfileID: "p", Role: models.UserRole("janitor")})
	require.NoError(t, err)
	filter, ok := scope.ClassFilter("")
	assert.False(t, ok)
	assert.True(t, filter.Empty())
}

func TestScopeServiceTeacherWithoutClasses(t *testing.T) {
	svc := NewScopeService(stubTeacherClasses{}, nil)
	scope, err := svc.Resolve(context.Background(), &models.Session{ProfileID: "t9", Role: models.RoleInternTeacher})
	require.NoError(t, err)
	_, ok := scope.Narrow("")
	assert.False(t, ok)
}

func TestScopeServiceErrors(t *testing.T) {
	svc := NewScopeService(stubTeacherClasses{err: assert.AnError}, nil)

	_, err := svc.Resolve(context.Background(), nil)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.Resolve(context.Background(), &models.Session{ProfileID: "t1", Role: models.RoleClassTeacher})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
