package httpx

import (
	"encoding/json"
	"net/http"
)

// Result is the single response envelope the front-end consumes. Every
// outcome of the intake pipeline, success or failure, is shaped this way.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteResult writes the JSON result envelope with the given status code.
func WriteResult(w http.ResponseWriter, statusCode int, success bool, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// The status line is already written; an encode failure here is not
	// recoverable and the envelope is too small to fail marshaling.
	_ = json.NewEncoder(w).Encode(Result{Success: success, Message: message})
}

// Common result writers for consistency

func WriteForbidden(w http.ResponseWriter) {
	WriteResult(w, http.StatusForbidden, false, "Request origin not allowed.")
}

func WriteMethodNotAllowed(w http.ResponseWriter) {
	WriteResult(w, http.StatusMethodNotAllowed, false, "Method not allowed.")
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteResult(w, http.StatusTooManyRequests, false, message)
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteResult(w, http.StatusBadRequest, false, message)
}
