package board

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/noticeboard/handler"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrTitleRequired   = errors.New("title required")
	ErrContentRequired = errors.New("content required")
)

// ErrorMapper renders board failures. Authorization failures use the board
// wording.
func ErrorMapper(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		return handler.NewHTTPError(http.StatusNotFound, "Post not found", err), true
	case errors.Is(err, ErrCommentNotFound):
		return handler.NewHTTPError(http.StatusNotFound, "Comment not found", err), true
	case errors.Is(err, ErrTitleRequired):
		return handler.NewHTTPError(http.StatusBadRequest, "title required", err), true
	case errors.Is(err, ErrContentRequired):
		return handler.NewHTTPError(http.StatusBadRequest, "content required", err), true
	case errors.Is(err, auth.ErrForbidden):
		return handler.NewHTTPError(http.StatusForbidden, "Not authorized", err), true
	case errors.Is(err, auth.ErrUnauthorized):
		return handler.NewHTTPError(http.StatusUnauthorized, "Unauthorized. Please log in.", err), true
	}
	return handler.HTTPError{}, false
}
