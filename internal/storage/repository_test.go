package storage

import (
	"context"
	"path/filepath"
	"testing"

	"garagelog/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestContributionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.InsertContribution(ctx, core.ContributionRecord{
		Type:      core.TypeImageUpload,
		RawDate:   "2024-03-01T10:00:00Z",
		Count:     40,
		VehicleID: "v1",
		Metadata:  map[string]string{"source": "mobile"},
	})
	if err != nil {
		t.Fatalf("InsertContribution: %v", err)
	}
	if id == "" {
		t.Fatal("InsertContribution returned empty id")
	}

	records, err := repo.ListContributions(ctx, "2024-03-01", "2024-03-01")
	if err != nil {
		t.Fatalf("ListContributions: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Type != core.TypeImageUpload || rec.Count != 40 || rec.VehicleID != "v1" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Metadata["source"] != "mobile" {
		t.Errorf("metadata = %v, want source=mobile", rec.Metadata)
	}

	outside, err := repo.ListContributions(ctx, "2024-03-02", "2024-03-31")
	if err != nil {
		t.Fatalf("ListContributions: %v", err)
	}
	if len(outside) != 0 {
		t.Errorf("got %d records outside range, want 0", len(outside))
	}
}

func TestDrilldownCollections(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertContractorWork(ctx, core.ContractorWork{
		Description:    "shop shift",
		OccurredAt:     "2024-03-01T09:00:00Z",
		OrganizationID: "org1",
		LaborHours:     2,
		LaborValue:     core.Money{Cents: 10000},
		MaterialsCost:  core.Money{Cents: 3000},
	}); err != nil {
		t.Fatalf("InsertContractorWork: %v", err)
	}

	eventID, err := repo.InsertTimelineEvent(ctx, core.TimelineEvent{
		Title:      "valve adjustment",
		OccurredAt: "2024-03-01T15:30:00Z",
		VehicleID:  "v1",
	})
	if err != nil {
		t.Fatalf("InsertTimelineEvent: %v", err)
	}
	if _, err := repo.AddLaborLine(ctx, core.LaborLine{
		EventID: eventID, Description: "valves", Hours: 1.5, Cost: core.Money{Cents: 6000},
	}); err != nil {
		t.Fatalf("AddLaborLine: %v", err)
	}
	if _, err := repo.AddPartLine(ctx, core.PartLine{
		EventID: eventID, Name: "gasket", Quantity: 1, Price: core.Money{Cents: 1000},
	}); err != nil {
		t.Fatalf("AddPartLine: %v", err)
	}

	work, err := repo.ListContractorWork(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("ListContractorWork: %v", err)
	}
	if len(work) != 1 || work[0].LaborValue.Cents != 10000 {
		t.Errorf("contractor work = %+v", work)
	}

	events, err := repo.ListTimelineEvents(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("ListTimelineEvents: %v", err)
	}
	if len(events) != 1 || events[0].ID != eventID {
		t.Errorf("events = %+v", events)
	}

	labor, err := repo.ListLaborLines(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("ListLaborLines: %v", err)
	}
	if len(labor) != 1 || labor[0].EventID != eventID || labor[0].Hours != 1.5 {
		t.Errorf("labor lines = %+v", labor)
	}

	parts, err := repo.ListPartLines(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("ListPartLines: %v", err)
	}
	if len(parts) != 1 || parts[0].Price.Cents != 1000 {
		t.Errorf("part lines = %+v", parts)
	}

	// A different day sees none of it.
	if events, _ := repo.ListTimelineEvents(ctx, "2024-03-02"); len(events) != 0 {
		t.Errorf("events on empty day = %+v, want none", events)
	}
}
