package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"garagelog/internal/activity"
	"garagelog/internal/core"
	"garagelog/internal/log"
)

type fakeProvider struct {
	calendarYear int
	dayRequested activity.Day
	recorded     []core.ContributionRecord
	failReads    bool
}

func (f *fakeProvider) Calendar(_ context.Context, year int) (*activity.YearGrid, error) {
	if f.failReads {
		return nil, errors.New("store down")
	}
	f.calendarYear = year
	return activity.BuildYearGrid(year, nil), nil
}

func (f *fakeProvider) Streaks(context.Context, activity.Day, int) (activity.StreakStats, error) {
	if f.failReads {
		return activity.StreakStats{}, errors.New("store down")
	}
	return activity.StreakStats{Longest: 4, Current: 2}, nil
}

func (f *fakeProvider) DaySummary(_ context.Context, date activity.Day) (*core.DaySummary, error) {
	if f.failReads {
		return nil, errors.New("store down")
	}
	f.dayRequested = date
	return &core.DaySummary{
		Date:      string(date),
		Locations: []core.LocationSummary{},
		Vehicles:  []core.VehicleRef{},
		Entries:   []core.WorkEntry{},
	}, nil
}

func (f *fakeProvider) RecordContribution(_ context.Context, rec core.ContributionRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	f.recorded = append(f.recorded, rec)
	return "c1", nil
}

func (f *fakeProvider) RecordContractorWork(_ context.Context, w core.ContractorWork) (string, error) {
	if err := w.Validate(); err != nil {
		return "", err
	}
	return "w1", nil
}

func (f *fakeProvider) RecordTimelineEvent(_ context.Context, ev core.TimelineEvent, _ []core.LaborLine, _ []core.PartLine) (string, error) {
	if ev.OccurredAt == "" {
		return "", core.ErrEmptyDate
	}
	return "e1", nil
}

func newTestServer(t *testing.T, provider *fakeProvider) *Server {
	t.Helper()
	srv := NewServer(":0", provider, log.New(log.DefaultConfig()), 1000)
	t.Cleanup(srv.rateLimiter.stop)
	return srv
}

func doRequest(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	rec := doRequest(srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCalendarEndpoint(t *testing.T) {
	provider := &fakeProvider{}
	srv := newTestServer(t, provider)

	rec := doRequest(srv, http.MethodGet, "/api/activity/calendar?year=2024", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if provider.calendarYear != 2024 {
		t.Errorf("provider asked for year %d, want 2024", provider.calendarYear)
	}

	var grid activity.YearGrid
	if err := json.Unmarshal(rec.Body.Bytes(), &grid); err != nil {
		t.Fatalf("decode grid: %v", err)
	}
	if grid.Year != 2024 {
		t.Errorf("grid year = %d, want 2024", grid.Year)
	}
}

func TestCalendarEndpoint_InvalidYear(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	for _, year := range []string{"abc", "-3", "0", "10000"} {
		rec := doRequest(srv, http.MethodGet, "/api/activity/calendar?year="+year, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("year=%q: status = %d, want 400", year, rec.Code)
		}
	}
}

func TestCalendarEndpoint_StoreError(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{failReads: true})

	rec := doRequest(srv, http.MethodGet, "/api/activity/calendar?year=2024", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestStreaksEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	rec := doRequest(srv, http.MethodGet, "/api/activity/streaks?end=2024-03-01&window=90", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var stats activity.StreakStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Longest != 4 || stats.Current != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestStreaksEndpoint_InvalidWindow(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	rec := doRequest(srv, http.MethodGet, "/api/activity/streaks?window=zero", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDayEndpoint_NormalizesDate(t *testing.T) {
	provider := &fakeProvider{}
	srv := newTestServer(t, provider)

	rec := doRequest(srv, http.MethodGet, "/api/activity/day?date=2024-03-01T15:04:05Z", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if provider.dayRequested != "2024-03-01" {
		t.Errorf("day requested = %q, want 2024-03-01", provider.dayRequested)
	}
}

func TestDayEndpoint_MissingDate(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	rec := doRequest(srv, http.MethodGet, "/api/activity/day", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDayEndpoint_EmptyDayIsOK(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	rec := doRequest(srv, http.MethodGet, "/api/activity/day?date=2024-03-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even with no records", rec.Code)
	}

	var summary core.DaySummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Entries == nil {
		t.Error("entries serialized as null, want empty array")
	}
}

func TestContributionsEndpoint(t *testing.T) {
	provider := &fakeProvider{}
	srv := newTestServer(t, provider)

	body := `{"type":"vehicle_data","date":"2024-03-01","count":3}`
	rec := doRequest(srv, http.MethodPost, "/api/contributions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(provider.recorded) != 1 || provider.recorded[0].Count != 3 {
		t.Errorf("recorded = %+v", provider.recorded)
	}
}

func TestContributionsEndpoint_ValidationFailure(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	body := `{"type":"vehicle_data","date":"2024-03-01","count":-1}`
	rec := doRequest(srv, http.MethodPost, "/api/contributions", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestContributionsEndpoint_MalformedBody(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	rec := doRequest(srv, http.MethodPost, "/api/contributions", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestContributionsEndpoint_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	rec := doRequest(srv, http.MethodGet, "/api/contributions", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestWorkEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	body := `{"description":"brake job","occurred_at":"2024-03-01","labor_hours":2,"labor_value":{"cents":10000},"materials_cost":{"cents":3000}}`
	rec := doRequest(srv, http.MethodPost, "/api/work", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestEventsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{})

	body := `{"event":{"title":"oil change","occurred_at":"2024-03-01"},"labor":[{"hours":0.5,"cost":{"cents":2000}}]}`
	rec := doRequest(srv, http.MethodPost, "/api/events", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp createdResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "e1" {
		t.Errorf("id = %q, want e1", resp.ID)
	}
}

func TestRateLimiter_BlocksAfterBudget(t *testing.T) {
	rl := newRateLimiter(3)
	defer rl.stop()

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d blocked inside budget", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request over budget allowed")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("unrelated client blocked")
	}
}

func TestRateLimiter_EndToEnd(t *testing.T) {
	srv := NewServer(":0", &fakeProvider{}, log.New(log.DefaultConfig()), 2)
	defer srv.rateLimiter.stop()

	var last int
	for i := 0; i < 3; i++ {
		last = doRequest(srv, http.MethodGet, "/healthz", "").Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}
