package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/noticeboard/pkg/binder"
	"github.com/dmitrymomot/noticeboard/pkg/logger"
	"github.com/dmitrymomot/noticeboard/pkg/validator"
)

// ErrorMapper translates a domain error to an HTTPError. It reports false
// for errors it does not know.
type ErrorMapper func(err error) (HTTPError, bool)

// JSONErrorHandler renders errors as {"error": "..."}. Resolution order:
// HTTPError, validation errors (400 with per-field messages), binding errors
// (400), the mappers in order, then 500. Only 5xx responses are logged at
// error level.
func JSONErrorHandler[C Context](log *slog.Logger, mappers ...ErrorMapper) ErrorHandler[C] {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx C, err error) {
		w := ctx.ResponseWriter()

		var he HTTPError
		if errors.As(err, &he) {
			respond(ctx, log, w, he.Code, ErrorBody{Error: he.Message}, err)
			return
		}

		if ve, ok := validator.Extract(err); ok {
			body := ErrorBody{Error: "Validation failed", Fields: make(map[string]string, len(ve))}
			for _, e := range ve {
				body.Fields[e.Field] = e.Message
			}
			if len(ve) == 1 {
				body.Error = ve[0].Field + " " + ve[0].Message
			}
			respond(ctx, log, w, http.StatusBadRequest, body, err)
			return
		}

		if errors.Is(err, binder.ErrInvalidRequest) {
			respond(ctx, log, w, http.StatusBadRequest, ErrorBody{Error: "Invalid request body"}, err)
			return
		}

		for _, m := range mappers {
			if he, ok := m(err); ok {
				respond(ctx, log, w, he.Code, ErrorBody{Error: he.Message}, err)
				return
			}
		}

		respond(ctx, log, w, http.StatusInternalServerError, ErrorBody{Error: "Internal server error"}, err)
	}
}

func respond[C Context](ctx C, log *slog.Logger, w http.ResponseWriter, code int, body ErrorBody, err error) {
	r := ctx.Request()
	if code >= http.StatusInternalServerError {
		log.ErrorContext(ctx, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
	} else {
		log.DebugContext(ctx, "request rejected",
			slog.Int("status", code),
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	WriteJSONError(w, code, body)
}
