package account

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/noticeboard/handler"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/session"
)

var errMissingCredentials = handler.NewHTTPError(http.StatusBadRequest, "Username and password required", nil)

// ErrorMapper renders auth and session failures with the messages the web
// client displays.
func ErrorMapper(err error) (handler.HTTPError, bool) {
	var mismatch *auth.AccountProviderMismatchError
	switch {
	case errors.As(err, &mismatch):
		return handler.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(
			"This account was created with %s. Please login using %s instead.",
			mismatch.Provider, mismatch.Provider,
		), err), true
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.NewHTTPError(http.StatusBadRequest, "User not found", err), true
	case errors.Is(err, auth.ErrNoPasswordSet):
		return handler.NewHTTPError(http.StatusBadRequest, "This account does not have a password set.", err), true
	case errors.Is(err, auth.ErrInvalidPassword):
		return handler.NewHTTPError(http.StatusBadRequest, "Invalid password", err), true
	case errors.Is(err, auth.ErrAuthenticationFailed):
		return handler.NewHTTPError(http.StatusUnauthorized, "Authentication failed", err), true
	case errors.Is(err, auth.ErrDuplicateIdentity):
		return handler.NewHTTPError(http.StatusBadRequest, "User already exists", err), true
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, session.ErrSessionNotFound):
		return handler.NewHTTPError(http.StatusUnauthorized, "Unauthorized. Please log in.", err), true
	case errors.Is(err, auth.ErrForbidden):
		return handler.NewHTTPError(http.StatusForbidden, "Not authorized", err), true
	}
	return handler.HTTPError{}, false
}
