package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProjectInputValidate(t *testing.T) {
	t.Run("name and url present", func(t *testing.T) {
		require.NoError(t, ProjectInput{Name: "Foo", URL: "http://x"}.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		err := ProjectInput{URL: "http://x"}.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("missing both reports both fields", func(t *testing.T) {
		err := ProjectInput{Description: "only a description"}.Validate()
		require.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "name is required")
		assert.Contains(t, err.Error(), "url is required")
	})
}

func TestProjectPatchValidate(t *testing.T) {
	assert.NoError(t, ProjectPatch{}.Validate())
	assert.NoError(t, ProjectPatch{Description: strPtr("")}.Validate())
	assert.NoError(t, ProjectPatch{Name: strPtr("X")}.Validate())

	err := ProjectPatch{URL: strPtr("")}.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "url must not be empty")
}

func TestProjectPatchApply(t *testing.T) {
	p := Project{ID: 3, Name: "old", Description: "d", URL: "http://a", Path: "/p", Image: "/static/uploads/3_x.png"}

	ProjectPatch{Name: strPtr("new"), Path: strPtr("")}.Apply(&p)

	assert.Equal(t, Project{ID: 3, Name: "new", Description: "d", URL: "http://a", Path: "", Image: "/static/uploads/3_x.png"}, p)
}

func TestProjectPatchIsEmpty(t *testing.T) {
	assert.True(t, ProjectPatch{}.IsEmpty())
	assert.False(t, ProjectPatch{Path: strPtr("")}.IsEmpty())
}
