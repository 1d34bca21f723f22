package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError is an error with a status code and a client-facing message.
// Err, when set, is the cause kept for logs and errors.Is.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

func (e HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e HTTPError) Unwrap() error { return e.Err }

// NewHTTPError builds an HTTPError. An empty message falls back to the
// status text.
func NewHTTPError(code int, message string, cause error) HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return HTTPError{Code: code, Message: message, Err: cause}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteJSONError writes body with code.
func WriteJSONError(w http.ResponseWriter, code int, body ErrorBody) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	var he HTTPError
	if errors.As(err, &he) {
		WriteJSONError(w, he.Code, ErrorBody{Error: he.Message})
		return
	}
	WriteJSONError(w, http.StatusInternalServerError, ErrorBody{Error: "Internal server error"})
}
