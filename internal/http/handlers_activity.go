package http

import (
	"errors"
	"net/http"
	"time"

	"garagelog/internal/activity"
	"garagelog/internal/core"
	"garagelog/internal/log"
)

const handlerTimeout = 15 * time.Second

// handleCalendar serves the year heatmap grid.
// GET /api/activity/calendar?year=2024
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	year, ok := parseYear(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	grid, err := s.provider.Calendar(ctx, year)
	if err != nil {
		log.FromContext(ctx).Error("calendar build failed", log.FieldYear, year, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// handleStreaks serves streak stats for the trailing window.
// GET /api/activity/streaks?end=2024-03-01&window=90
func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	end, ok := parseDay(r, "end")
	if !ok {
		end = activity.Today()
	}
	window := 0
	if raw := r.URL.Query().Get("window"); raw != "" {
		n, ok := parsePositiveInt(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid window")
			return
		}
		window = n
	}

	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	stats, err := s.provider.Streaks(ctx, end, window)
	if err != nil {
		log.FromContext(ctx).Error("streak computation failed", log.FieldDate, string(end), log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute streaks")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleDay serves the itemized receipt for one civil date. A day with no
// records is a 200 with an empty summary, not an error.
// GET /api/activity/day?date=2024-03-01
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	date, ok := parseDay(r, "date")
	if !ok {
		writeError(w, http.StatusBadRequest, "missing date")
		return
	}

	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	summary, err := s.provider.DaySummary(ctx, date)
	if err != nil {
		log.FromContext(ctx).Error("day summary failed", log.FieldDate, string(date), log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compile day summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type createdResponse struct {
	ID string `json:"id"`
}

// handleContributions records one contribution.
// POST /api/contributions
func (s *Server) handleContributions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var rec core.ContributionRecord
	if !decodeBody(w, r, &rec) {
		return
	}

	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	id, err := s.provider.RecordContribution(ctx, rec)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.FromContext(ctx).Error("contribution write failed", log.FieldRecordType, string(rec.Type), log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to record contribution")
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// handleContractorWork records one contractor work entry.
// POST /api/work
func (s *Server) handleContractorWork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var work core.ContractorWork
	if !decodeBody(w, r, &work) {
		return
	}

	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	id, err := s.provider.RecordContractorWork(ctx, work)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.FromContext(ctx).Error("work record write failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to record work")
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

type timelineEventRequest struct {
	Event core.TimelineEvent `json:"event"`
	Labor []core.LaborLine   `json:"labor,omitempty"`
	Parts []core.PartLine    `json:"parts,omitempty"`
}

// handleTimelineEvents records a timeline event with its labor and parts
// lines in one request.
// POST /api/events
func (s *Server) handleTimelineEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req timelineEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	id, err := s.provider.RecordTimelineEvent(ctx, req.Event, req.Labor, req.Parts)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.FromContext(ctx).Error("timeline event write failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to record event")
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrEmptyDate) ||
		errors.Is(err, core.ErrNegativeCount) ||
		errors.Is(err, core.ErrUnknownType) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyDescriptor)
}
