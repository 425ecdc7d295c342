package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load class: %w", Clone(ErrForbidden, "not your class"))

	got := FromError(wrapped)

	assert.Equal(t, ErrForbidden.Code, got.Code)
	assert.Equal(t, "not your class", got.Message)
	assert.Equal(t, http.StatusForbidden, got.Status)
}

func TestFromErrorHidesUntypedErrors(t *testing.T) {
	got := FromError(sql.ErrConnDone)

	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, ErrInternal.Message, got.Message)
	assert.ErrorIs(t, got, sql.ErrConnDone)
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "class_id is required")

	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "class_id is required", clone.Message)
	assert.True(t, IsCode(clone, ErrValidation.Code))
	assert.False(t, IsCode(sql.ErrNoRows, ErrValidation.Code))
}
