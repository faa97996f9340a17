package response

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// JSON encodes data before touching the writer, so an encoding failure
// still produces a clean 500 instead of a truncated body.
func JSON(w http.ResponseWriter, status int, data any) {
	var body bytes.Buffer
	if data != nil {
		if err := json.NewEncoder(&body).Encode(data); err != nil {
			http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body.Bytes())
}

// Private marks the response as not cacheable by browsers or proxies.
func Private(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}

// NoContent writes 204
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
