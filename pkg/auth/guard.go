package auth

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// RequireAuthenticated fails with ErrUnauthorized when user is nil.
func RequireAuthenticated(user *User) error {
	if user == nil {
		return ErrUnauthorized
	}
	return nil
}

// RequireOwnership allows only the resource author. A resource without an
// author belongs to nobody.
func RequireOwnership(user *User, ownerID *uuid.UUID) error {
	if user == nil {
		return ErrUnauthorized
	}
	if ownerID == nil || *ownerID != user.ID {
		return ErrForbidden
	}
	return nil
}

// RequireAuth rejects requests without an authenticated user in context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RequireAuthenticated(UserFromContext(r.Context())) != nil {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized. Please log in."})
			return
		}
		next.ServeHTTP(w, r)
	})
}
