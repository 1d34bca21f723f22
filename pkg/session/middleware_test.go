package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/session"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := f.establish(t)

	var gotUser *auth.User
	var gotSession bool
	h := f.mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = auth.UserFromContext(r.Context())
		_, gotSession = session.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	h.ServeHTTP(httptest.NewRecorder(), requestWith(c))
	if assert.NotNil(t, gotUser) {
		assert.Equal(t, f.user.ID, gotUser.ID)
	}
	assert.True(t, gotSession)

	h.ServeHTTP(httptest.NewRecorder(), requestWith(nil))
	assert.Nil(t, gotUser)
	assert.False(t, gotSession)
}

func TestMiddleware_WithRequireAuth(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := f.establish(t)

	h := f.mgr.Middleware(auth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWith(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWith(nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
