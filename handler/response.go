package handler

import (
	"encoding/json"
	"net/http"
)

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

type JSONOption func(*jsonResponse)

func WithStatus(status int) JSONOption {
	return func(j *jsonResponse) { j.status = status }
}

// JSON encodes v as the response body, 200 unless WithStatus says otherwise.
func JSON(v any, opts ...JSONOption) Response {
	j := &jsonResponse{status: http.StatusOK, body: v}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Message is the {"message": ...} body used for acknowledgements.
func Message(msg string, opts ...JSONOption) Response {
	return JSON(map[string]string{"message": msg}, opts...)
}

type redirectResponse struct {
	url  string
	code int
}

func (rr redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rr.url, rr.code)
	return nil
}

// Redirect answers with code (303 when zero) and a Location header.
func Redirect(url string, code int) Response {
	if code == 0 {
		code = http.StatusSeeOther
	}
	return redirectResponse{url: url, code: code}
}

type errorResponse struct{ err error }

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }

// Error hands err to the configured ErrorHandler.
func Error(err error) Response {
	return errorResponse{err: err}
}
