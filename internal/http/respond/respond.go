package respond

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes payload with the given status. Write failures are logged with
// the request's logger.
func JSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("respond: encode payload failed")
	}
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, r, status, ErrorBody{Error: message})
}

// Validation writes a 400 with per-field messages.
func Validation(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	JSON(w, r, http.StatusBadRequest, ErrorBody{Error: "validation failed", Fields: fields})
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// File writes body as a download named filename.
func File(w http.ResponseWriter, r *http.Request, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("filename", filename).Msg("respond: write file failed")
	}
}
