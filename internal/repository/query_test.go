package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-portal-api/internal/models"
)

func TestConditions(t *testing.T) {
	var c conditions
	assert.Equal(t, "", c.where())

	c.add("a.student_id = $%d", "s1")
	c.classScope("a.class_id", models.ClassScope{})
	c.classScope("a.class_id", models.ClassScope{Restricted: true, ClassIDs: []string{"c1"}})
	c.raw("a.is_present")

	assert.Equal(t, " WHERE a.student_id = $1 AND a.class_id = ANY($2) AND a.is_present", c.where())
	assert.Len(t, c.args, 2)
}

func TestPageWindow(t *testing.T) {
	page, size, offset := pageWindow(0, 0)
	assert.Equal(t, []int{1, defaultPageSize, 0}, []int{page, size, offset})

	page, size, offset = pageWindow(3, 500)
	assert.Equal(t, []int{3, defaultPageSize, 40}, []int{page, size, offset})

	_, size, offset = pageWindow(2, 50)
	assert.Equal(t, 50, size)
	assert.Equal(t, 50, offset)
}
