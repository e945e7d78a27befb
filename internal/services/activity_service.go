// Package services wires the record store, the activity engine, the view
// cache, and the change-event bus together.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"garagelog/internal/activity"
	"garagelog/internal/amqp"
	"garagelog/internal/cache"
	"garagelog/internal/core"
)

// RecordStore is the data-access collaborator. It owns all persistence
// and query construction; the service only reads record collections from
// it and hands them to the engine.
type RecordStore interface {
	InsertContribution(ctx context.Context, rec core.ContributionRecord) (string, error)
	ListContributions(ctx context.Context, from, to activity.Day) ([]core.ContributionRecord, error)
	InsertContractorWork(ctx context.Context, w core.ContractorWork) (string, error)
	ListContractorWork(ctx context.Context, date activity.Day) ([]core.ContractorWork, error)
	InsertTimelineEvent(ctx context.Context, ev core.TimelineEvent) (string, error)
	ListTimelineEvents(ctx context.Context, date activity.Day) ([]core.TimelineEvent, error)
	AddLaborLine(ctx context.Context, l core.LaborLine) (string, error)
	AddPartLine(ctx context.Context, p core.PartLine) (string, error)
	ListLaborLines(ctx context.Context, date activity.Day) ([]core.LaborLine, error)
	ListPartLines(ctx context.Context, date activity.Day) ([]core.PartLine, error)
}

// ChangePublisher announces record-set changes to interested consumers.
type ChangePublisher interface {
	PublishRecordsChanged(ctx context.Context, scope, date string) error
}

// ActivityService answers the three read views (calendar, streaks, day
// receipt) and the write paths that invalidate them. Derived views are
// memoized keyed on a content hash of their inputs; the engine itself
// stays stateless and is always safe to re-run.
type ActivityService struct {
	store        RecordStore
	events       ChangePublisher
	grids        *cache.View[*activity.YearGrid]
	receipts     *cache.View[*core.DaySummary]
	streakWindow int
}

func NewActivityService(store RecordStore, events ChangePublisher, cacheTTL time.Duration, streakWindow int) *ActivityService {
	if streakWindow < 1 {
		streakWindow = 365
	}
	return &ActivityService{
		store:        store,
		events:       events,
		grids:        cache.NewView[*activity.YearGrid](cacheTTL),
		receipts:     cache.NewView[*core.DaySummary](cacheTTL),
		streakWindow: streakWindow,
	}
}

// Calendar returns the heatmap grid for one year.
func (s *ActivityService) Calendar(ctx context.Context, year int) (*activity.YearGrid, error) {
	from, to := activity.GridRange(year)
	records, err := s.store.ListContributions(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}

	key := fmt.Sprintf("grid:%d:%s", year, cache.Fingerprint(contributionLines(records)))
	if grid, ok := s.grids.Get(key); ok {
		return grid, nil
	}

	grid := activity.BuildYearGrid(year, activity.Aggregate(records))
	s.grids.Set(key, grid)
	return grid, nil
}

// Streaks computes streak stats over the window ending at end. A
// non-positive window falls back to the configured default (typically the
// trailing 365 days).
func (s *ActivityService) Streaks(ctx context.Context, end activity.Day, window int) (activity.StreakStats, error) {
	if window < 1 {
		window = s.streakWindow
	}
	dateRange := activity.RangeEnding(end, window)

	records, err := s.store.ListContributions(ctx, dateRange[0], end)
	if err != nil {
		return activity.StreakStats{}, fmt.Errorf("list contributions: %w", err)
	}
	return activity.Streaks(activity.Aggregate(records), dateRange), nil
}

// DaySummary compiles the itemized receipt for one civil date. The four
// source collections are independent queries, so they are fetched
// concurrently.
func (s *ActivityService) DaySummary(ctx context.Context, date activity.Day) (*core.DaySummary, error) {
	var src activity.Sources

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		src.ContractorWork, err = s.store.ListContractorWork(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		src.TimelineEvents, err = s.store.ListTimelineEvents(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		src.LaborLines, err = s.store.ListLaborLines(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		src.PartsLines, err = s.store.ListPartLines(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch day sources: %w", err)
	}

	key := fmt.Sprintf("day:%s:%s", date, cache.Fingerprint(sourceLines(src)))
	if summary, ok := s.receipts.Get(key); ok {
		return summary, nil
	}

	summary := activity.CompileDay(date, src)
	s.receipts.Set(key, summary)
	return summary, nil
}

// RecordContribution validates and stores a contribution, then drops
// cached views and announces the change. Event publishing is best-effort:
// the record is already durable, so a dead broker costs freshness in the
// worker, not the write.
func (s *ActivityService) RecordContribution(ctx context.Context, rec core.ContributionRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validate contribution: %w", err)
	}

	id, err := s.store.InsertContribution(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("insert contribution: %w", err)
	}

	s.invalidate()
	s.publish(ctx, amqp.ScopeContributions, string(activity.Normalize(rec.RawDate)))
	return id, nil
}

// RecordContractorWork stores a contractor work record.
func (s *ActivityService) RecordContractorWork(ctx context.Context, w core.ContractorWork) (string, error) {
	if err := w.Validate(); err != nil {
		return "", fmt.Errorf("validate contractor work: %w", err)
	}

	id, err := s.store.InsertContractorWork(ctx, w)
	if err != nil {
		return "", fmt.Errorf("insert contractor work: %w", err)
	}

	s.invalidate()
	s.publish(ctx, amqp.ScopeWorkRecords, string(activity.Normalize(w.OccurredAt)))
	return id, nil
}

// RecordTimelineEvent stores a timeline event with its labor and parts
// lines in one call.
func (s *ActivityService) RecordTimelineEvent(ctx context.Context, ev core.TimelineEvent, labor []core.LaborLine, parts []core.PartLine) (string, error) {
	if ev.OccurredAt == "" {
		return "", core.ErrEmptyDate
	}

	id, err := s.store.InsertTimelineEvent(ctx, ev)
	if err != nil {
		return "", fmt.Errorf("insert timeline event: %w", err)
	}
	for _, l := range labor {
		l.EventID = id
		if _, err := s.store.AddLaborLine(ctx, l); err != nil {
			return "", fmt.Errorf("add labor line: %w", err)
		}
	}
	for _, p := range parts {
		p.EventID = id
		if _, err := s.store.AddPartLine(ctx, p); err != nil {
			return "", fmt.Errorf("add part line: %w", err)
		}
	}

	s.invalidate()
	s.publish(ctx, amqp.ScopeWorkRecords, string(activity.Normalize(ev.OccurredAt)))
	return id, nil
}

func (s *ActivityService) invalidate() {
	s.grids.InvalidateAll()
	s.receipts.InvalidateAll()
}

func (s *ActivityService) publish(ctx context.Context, scope, date string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordsChanged(ctx, scope, date); err != nil {
		slog.ErrorContext(ctx, "Failed to publish records-changed event",
			"scope", scope, "date", date, "error", err)
	}
}

func contributionLines(records []core.ContributionRecord) []string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = fmt.Sprintf("%s|%s|%s|%d", r.ID, r.Type, r.RawDate, r.Count)
	}
	return lines
}

func sourceLines(src activity.Sources) []string {
	var lines []string
	for _, w := range src.ContractorWork {
		lines = append(lines, fmt.Sprintf("w|%s|%s|%g|%d|%d",
			w.ID, w.OccurredAt, w.LaborHours, w.LaborValue.Cents, w.MaterialsCost.Cents))
	}
	for _, e := range src.TimelineEvents {
		lines = append(lines, fmt.Sprintf("e|%s|%s", e.ID, e.OccurredAt))
	}
	for _, l := range src.LaborLines {
		lines = append(lines, fmt.Sprintf("l|%s|%s|%g|%d", l.ID, l.EventID, l.Hours, l.Cost.Cents))
	}
	for _, p := range src.PartsLines {
		lines = append(lines, fmt.Sprintf("p|%s|%s|%d|%d", p.ID, p.EventID, p.Quantity, p.Price.Cents))
	}
	return lines
}
