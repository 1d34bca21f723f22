package validator_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/noticeboard/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("username", "a@x.com"),
			validator.ValidEmail("username", "a@x.com"),
		)
		assert.NoError(t, err)
	})

	t.Run("collects failures", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("username", " "),
			validator.ValidEmail("username", " "),
			validator.RequiredString("password", ""),
		)
		require.Error(t, err)

		ve, ok := validator.Extract(err)
		require.True(t, ok)
		assert.Len(t, ve, 2, "one error per field")
		assert.Equal(t, []string{"username", "password"}, ve.Fields())
		assert.Equal(t, "field is required", ve[0].Message)
		assert.Contains(t, err.Error(), "password: field is required")
	})

	t.Run("extract through wrapping", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("register: %w", validator.Apply(validator.RequiredString("title", "")))
		ve, ok := validator.Extract(err)
		require.True(t, ok)
		assert.True(t, ve.Has("title"))
	})

	t.Run("extract non validation error", func(t *testing.T) {
		t.Parallel()
		_, ok := validator.Extract(assert.AnError)
		assert.False(t, ok)
	})
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"a@x.com", "first.last+tag@sub.example.org", " padded@x.io "}
	invalid := []string{"", "plain", "@x.com", "a@localhost", "a@.com", "a@x.", "Bob <bob@x.com>", "a@@x.com"}

	for _, v := range valid {
		assert.True(t, validator.ValidEmail("email", v).Check(), v)
	}
	for _, v := range invalid {
		assert.False(t, validator.ValidEmail("email", v).Check(), v)
	}
}

func TestMaxLenString(t *testing.T) {
	t.Parallel()
	assert.True(t, validator.MaxLenString("title", "héllo", 5).Check())
	assert.False(t, validator.MaxLenString("title", strings.Repeat("x", 6), 5).Check())
}
