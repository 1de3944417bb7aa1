// Package middleware holds the HTTP middleware shared by every route.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hongminglow/fintrack-be/internal/logging"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logging attaches a request-scoped logger to the context and writes one
// access line per request. An incoming X-Request-ID is reused.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			reqLogger := logger.With().
				Str(logging.FieldRequestID, reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()
			rec := &statusRecorder{ResponseWriter: w}

			defer func() {
				if p := recover(); p != nil {
					reqLogger.Error().Interface("panic", p).Msg("request panicked")
					if rec.status == 0 {
						http.Error(rec, `{"error":"internal server error"}`, http.StatusInternalServerError)
					}
				}
				status := rec.status
				if status == 0 {
					status = http.StatusOK
				}
				ev := reqLogger.Info()
				if status >= http.StatusInternalServerError {
					ev = reqLogger.Error()
				}
				ev.Int("status", status).
					Int("bytes", rec.bytes).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(rec, r.WithContext(reqLogger.WithContext(r.Context())))
		})
	}
}
