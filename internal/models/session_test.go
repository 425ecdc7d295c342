package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRole(t *testing.T) {
	for _, role := range AllRoles {
		assert.True(t, role.Valid(), role)
	}
	assert.False(t, UserRole("ADMIN").Valid())
	assert.False(t, UserRole("teacher").Valid())

	assert.True(t, RoleInternTeacher.IsTeaching())
	assert.False(t, RoleSubAdmin.IsTeaching())
	assert.True(t, RoleSubAdmin.IsAdministrative())
	assert.False(t, RoleStudent.IsAdministrative())
}

func TestScopeNarrow(t *testing.T) {
	teacher := Scope{ClassIDs: []string{"c1", "c2"}}

	ids, ok := teacher.Narrow("")
	assert.True(t, ok)
	assert.Equal(t, []string{"c1", "c2"}, ids)

	ids, ok = teacher.Narrow("c2")
	assert.True(t, ok)
	assert.Equal(t, []string{"c2"}, ids)

	ids, ok = teacher.Narrow("c9")
	assert.False(t, ok)
	assert.Nil(t, ids)

	admin := Scope{Unrestricted: true}
	ids, ok = admin.Narrow("")
	assert.True(t, ok)
	assert.Nil(t, ids)

	ids, ok = admin.Narrow("c9")
	assert.True(t, ok)
	assert.Equal(t, []string{"c9"}, ids)

	_, ok = Scope{}.Narrow("")
	assert.False(t, ok)
}

func TestScopeClassFilter(t *testing.T) {
	cs, ok := Scope{Unrestricted: true}.ClassFilter("")
	assert.True(t, ok)
	assert.False(t, cs.Restricted)
	assert.False(t, cs.Empty())

	cs, ok = Scope{ClassIDs: []string{"c1"}}.ClassFilter("c1")
	assert.True(t, ok)
	assert.Equal(t, ClassScope{Restricted: true, ClassIDs: []string{"c1"}}, cs)

	cs, ok = Scope{ClassIDs: []string{"c1"}}.ClassFilter("c2")
	assert.False(t, ok)
	assert.True(t, cs.Empty())
}

func TestScopeNarrowStudent(t *testing.T) {
	student := Scope{ClassIDs: []string{"c1"}, Student: true, StudentID: "s1"}

	id, ok := student.NarrowStudent("")
	assert.True(t, ok)
	assert.Equal(t, "s1", id)

	id, ok = student.NarrowStudent("s1")
	assert.True(t, ok)
	assert.Equal(t, "s1", id)

	_, ok = student.NarrowStudent("s2")
	assert.False(t, ok)

	id, ok = Scope{Unrestricted: true}.NarrowStudent("s2")
	assert.True(t, ok)
	assert.Equal(t, "s2", id)

	_, ok = Scope{Student: true}.NarrowStudent("")
	assert.False(t, ok, "unenrolled student sees nothing")

	id, ok = Scope{ClassIDs: []string{"c1"}}.NarrowStudent("s9")
	assert.True(t, ok, "teacher scope leaves student filter to the class scope")
	assert.Equal(t, "s9", id)
}
