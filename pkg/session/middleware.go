package session

import (
	"net/http"

	"github.com/dmitrymomot/noticeboard/pkg/auth"
)

// Middleware attaches the session and its user to the request context.
// Requests without a live session pass through untouched.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, user := m.attach(r.Context(), r)
		if user == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := WithSession(r.Context(), s)
		ctx = auth.WithUser(ctx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
