package activity

import (
	"math/rand"
	"testing"

	"garagelog/internal/core"
)

func TestStreaks_TenDayRunEndedYesterday(t *testing.T) {
	// Ten consecutive active days, an empty eleventh, "today" the twelfth.
	var records []core.ContributionRecord
	start := Day("2024-03-01")
	for i := 0; i < 10; i++ {
		records = append(records, core.ContributionRecord{
			Type:    core.TypeVehicleData,
			RawDate: string(start.AddDays(i)),
			Count:   1,
		})
	}

	dateRange := RangeEnding("2024-03-12", 12)
	stats := Streaks(Aggregate(records), dateRange)

	if stats.Longest != 10 {
		t.Errorf("Longest = %d, want 10", stats.Longest)
	}
	if stats.Current != 0 {
		t.Errorf("Current = %d, want 0 (today inactive breaks the streak)", stats.Current)
	}
}

func TestStreaks_CurrentIncludesActiveToday(t *testing.T) {
	records := []core.ContributionRecord{
		{Type: core.TypeVehicleData, RawDate: "2024-03-09", Count: 1},
		{Type: core.TypeVehicleData, RawDate: "2024-03-10", Count: 2},
	}

	stats := Streaks(Aggregate(records), RangeEnding("2024-03-10", 7))
	if stats.Current != 2 {
		t.Errorf("Current = %d, want 2", stats.Current)
	}
	if stats.Longest != 2 {
		t.Errorf("Longest = %d, want 2", stats.Longest)
	}
}

func TestStreaks_ZeroCountDayIsInactive(t *testing.T) {
	// A record with count 0 produces an aggregate but not an active day.
	records := []core.ContributionRecord{
		{Type: core.TypeImageUpload, RawDate: "2024-03-10", Count: 0},
	}

	stats := Streaks(Aggregate(records), RangeEnding("2024-03-10", 5))
	if stats.Longest != 0 || stats.Current != 0 {
		t.Errorf("Streaks = %+v, want all zero", stats)
	}
}

func TestStreaks_EmptyRange(t *testing.T) {
	stats := Streaks(map[Day]*DailyAggregate{}, nil)
	if stats.Longest != 0 || stats.Current != 0 {
		t.Errorf("Streaks on empty range = %+v, want zero", stats)
	}
}

func TestStreaks_LongestInMiddleOfRange(t *testing.T) {
	records := []core.ContributionRecord{
		{Type: core.TypeVehicleData, RawDate: "2024-03-02", Count: 1},
		{Type: core.TypeVehicleData, RawDate: "2024-03-03", Count: 1},
		{Type: core.TypeVehicleData, RawDate: "2024-03-04", Count: 1},
		{Type: core.TypeVehicleData, RawDate: "2024-03-08", Count: 1},
	}

	stats := Streaks(Aggregate(records), RangeEnding("2024-03-09", 9))
	if stats.Longest != 3 {
		t.Errorf("Longest = %d, want 3", stats.Longest)
	}
	if stats.Current != 0 {
		t.Errorf("Current = %d, want 0", stats.Current)
	}
}

func TestStreaks_InvariantUnderRecordReordering(t *testing.T) {
	records := []core.ContributionRecord{
		{Type: core.TypeVehicleData, RawDate: "2024-03-01", Count: 1},
		{Type: core.TypeImageUpload, RawDate: "2024-03-02T12:00:00Z", Count: 30},
		{Type: core.TypeVerification, RawDate: "2024-03-03", Count: 2},
		{Type: core.TypeAnnotation, RawDate: "2024-03-05", Count: 1},
		{Type: core.TypeBusinessEvent, RawDate: "2024-03-06", Count: 4},
	}
	dateRange := RangeEnding("2024-03-07", 10)
	want := Streaks(Aggregate(records), dateRange)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]core.ContributionRecord, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := Streaks(Aggregate(shuffled), dateRange); got != want {
			t.Fatalf("Streaks changed under reordering: got %+v, want %+v", got, want)
		}
	}
}
