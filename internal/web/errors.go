package web

// errors.go provides the JSON error and success response helpers shared by
// all handlers. Pipeline failures surface to the client as a single
// {"error": ...} payload; the technical detail is also logged server-side
// with the request ID for correlation.

import (
	"encoding/json"
	"net/http"

	"github.com/nboulle/meterflow/internal/logging"
)

// writeError writes a JSON error response and logs it.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", message,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
