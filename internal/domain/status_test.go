package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus_ExactStrings(t *testing.T) {
	for _, raw := range []string{"Open", "In Progress", "Blocked", "Closed", "Deleted"} {
		s, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, string(s))
	}
}

func TestParseStatus_RejectsNearMisses(t *testing.T) {
	for _, raw := range []string{"open", "InProgress", "in progress", "Done", "", "DELETED"} {
		_, err := ParseStatus(raw)
		require.Error(t, err, raw)

		var iie *InvalidInputError
		require.True(t, errors.As(err, &iie), raw)
		assert.Equal(t, "status", iie.Field)
		assert.Equal(t, raw, iie.Value)
		assert.Equal(t, Statuses(), iie.Allowed)
	}
}

func TestInvalidInputError_Message(t *testing.T) {
	err := NewInvalidInput("sort_by", "bogus", []string{"created_at", "due_date"})
	assert.Equal(t, `invalid sort_by "bogus", valid values: [created_at, due_date]`, err.Error())

	err = NewInvalidInputReason("title", "length must be 1-500 characters")
	assert.Equal(t, "invalid title: length must be 1-500 characters", err.Error())
}

func TestTaskChanges_IsZero(t *testing.T) {
	assert.True(t, TaskChanges{}.IsZero())

	title := "x"
	assert.False(t, TaskChanges{Title: &title}.IsZero())
	assert.False(t, TaskChanges{DueDate: NewOptTime(nil)}.IsZero())
	assert.False(t, TaskChanges{Comments: NewOptString(nil)}.IsZero())
}
