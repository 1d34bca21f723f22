// Package binder populates request structs from HTTP requests.
//
// Binders share one signature, func(r *http.Request, v any) error, so they
// can be chained by handler.WithBinders. Every binding failure wraps
// ErrInvalidRequest, which the HTTP layer renders as 400.
package binder

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
)

// MaxJSONSize caps request bodies.
const MaxJSONSize = 1 << 20

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrUnsupportedMediaType = fmt.Errorf("%w: unsupported media type", ErrInvalidRequest)
	ErrMalformedJSON        = fmt.Errorf("%w: malformed json", ErrInvalidRequest)
	ErrBodyTooLarge         = fmt.Errorf("%w: body too large", ErrInvalidRequest)
	ErrInvalidPathParam     = fmt.Errorf("%w: invalid path parameter", ErrInvalidRequest)
)

// JSON decodes the body into v. An empty body leaves v untouched so that
// field validation reports what is missing. Unknown fields are ignored.
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Body == nil || r.Body == http.NoBody {
			return nil
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxJSONSize+1))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		if len(body) > MaxJSONSize {
			return ErrBodyTooLarge
		}
		if len(body) == 0 {
			return nil
		}

		if ct := r.Header.Get("Content-Type"); ct != "" {
			mt, _, err := mime.ParseMediaType(ct)
			if err != nil || mt != "application/json" {
				return fmt.Errorf("%w: %q", ErrUnsupportedMediaType, ct)
			}
		}

		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		return nil
	}
}

// Path fills fields tagged `path:"name"` from chi URL parameters. Supported
// field kinds are string and anything implementing encoding.TextUnmarshaler,
// such as uuid.UUID.
func Path() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
			return nil
		}
		rv = rv.Elem()
		rt := rv.Type()

		for i := range rt.NumField() {
			f := rt.Field(i)
			name := f.Tag.Get("path")
			if name == "" || !f.IsExported() {
				continue
			}
			raw := chi.URLParam(r, name)
			field := rv.Field(i)

			if tu, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
				if err := tu.UnmarshalText([]byte(raw)); err != nil {
					return fmt.Errorf("%w: %s", ErrInvalidPathParam, name)
				}
				continue
			}
			if field.Kind() == reflect.String {
				field.SetString(raw)
				continue
			}
			return fmt.Errorf("%w: unsupported field type %s for %s", ErrInvalidPathParam, f.Type, name)
		}
		return nil
	}
}
