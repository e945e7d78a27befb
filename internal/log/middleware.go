package log

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

// ContextKey type for context keys
type ContextKey string

// LoggerContextKey is the context key for the request-scoped logger.
const LoggerContextKey ContextKey = "logger"

// Middleware returns HTTP middleware that attaches a request-scoped logger
// (with a fresh request id) to the context and logs each request on the
// way out.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := newRequestID()

			reqLogger := logger.With(FieldRequestID, requestID)
			ctx := context.WithValue(r.Context(), LoggerContextKey, reqLogger)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			reqLogger.Info("request completed",
				FieldMethod, r.Method,
				FieldPath, r.URL.Path,
				FieldStatusCode, sw.status,
				FieldDuration, time.Since(start).Milliseconds())
		})
	}
}

// FromContext extracts the request-scoped logger, falling back to a default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return New(DefaultConfig())
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}
