package httpapi

import (
	"encoding/json"
	"net/http"

	"powerd/internal/service"
	"powerd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps the service error taxonomy to HTTP status codes:
// user input 400, unknown model 404, artifact unavailable 503, everything
// else (including internal schema violations) 500.
func statusForError(err error) int {
	switch {
	case service.IsNotFound(err):
		return http.StatusNotFound
	case service.IsBadInput(err):
		return http.StatusBadRequest
	case service.IsUnavailable(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
