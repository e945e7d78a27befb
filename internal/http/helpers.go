package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"garagelog/internal/activity"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// parseYear reads the year query parameter, defaulting to the current year.
func parseYear(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		return 0, false
	}
	return year, true
}

// parseDay reads a date-valued query parameter and normalizes it. An
// empty parameter is reported to the caller rather than silently
// resolving to today; each endpoint decides its own fallback.
func parseDay(r *http.Request, name string) (activity.Day, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return "", false
	}
	return activity.Normalize(raw), true
}

func parsePositiveInt(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func contextWithTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), handlerTimeout)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
