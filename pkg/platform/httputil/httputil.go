package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "atlas/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Internal errors never leak their description to clients.
func WriteError(w http.ResponseWriter, err error) {
	status, code, description := ErrorResponse(err)
	body := map[string]string{"error": code}
	if description != "" {
		body["error_description"] = description
	}
	WriteJSON(w, status, body)
}

// ErrorResponse resolves the status, code and client-safe description for err.
// HTML handlers use it to render the same information as the JSON envelope.
func ErrorResponse(err error) (int, string, string) {
	de, ok := dErrors.As(err)
	if !ok {
		return http.StatusInternalServerError, string(dErrors.CodeInternal), ""
	}
	status := dErrors.ToHTTPStatus(de.Code)
	if status == http.StatusInternalServerError {
		return status, string(dErrors.CodeInternal), ""
	}
	return status, string(de.Code), de.Message
}
