package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type statusWriter struct {
	w      http.ResponseWriter
	status int
	size   int
}

func (sw *statusWriter) Header() http.Header { return sw.w.Header() }
func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.w.Write(b)
	sw.size += n
	return n, err
}
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.w.WriteHeader(code)
}

// Logging emits one access-log line per request.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{w: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info().
				Str("rid", GetRequestID(r)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Dur("dur", time.Since(start)).
				Int("size", sw.size).
				Msg("http")
		})
	}
}
