package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/noticeboard/pkg/logger"
)

func TestAttrs(t *testing.T) {
	t.Parallel()

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		err := errors.New("boom")
		a := logger.Error(err)
		assert.Equal(t, "error", a.Key)
		assert.Equal(t, err, a.Value.Any())
		assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	})

	t.Run("user id", func(t *testing.T) {
		t.Parallel()
		id := uuid.New()
		a := logger.UserID(id)
		assert.Equal(t, "user_id", a.Key)
		assert.Equal(t, id, a.Value.Any())
		assert.True(t, logger.UserID(nil).Equal(slog.Attr{}))
	})

	t.Run("string attrs", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "google", logger.Provider("google").Value.String())
		assert.Equal(t, "req-1", logger.RequestID("req-1").Value.String())
		assert.Equal(t, "session", logger.Component("session").Value.String())
	})

	t.Run("resource group", func(t *testing.T) {
		t.Parallel()
		a := logger.Resource("post", "p1")
		assert.Equal(t, "resource", a.Key)
		assert.Equal(t, slog.KindGroup, a.Value.Kind())
		assert.Len(t, a.Value.Group(), 2)
	})
}
