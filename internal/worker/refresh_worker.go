// Package worker consumes records-changed events and rewarms the derived
// activity views so the next read is served from a fresh cache.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"garagelog/internal/activity"
	"garagelog/internal/amqp"
	"garagelog/internal/core"
	"garagelog/internal/log"
)

// ActivityViews is the slice of the service the worker recomputes.
type ActivityViews interface {
	Calendar(ctx context.Context, year int) (*activity.YearGrid, error)
	Streaks(ctx context.Context, end activity.Day, window int) (activity.StreakStats, error)
	DaySummary(ctx context.Context, date activity.Day) (*core.DaySummary, error)
}

// GridExporter mirrors a year grid to an external sink, typically a
// spreadsheet. Optional; a nil exporter disables mirroring.
type GridExporter interface {
	ExportYear(ctx context.Context, grid *activity.YearGrid) error
}

type MessageConsumer interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.RecordsChangedMessage) error) error
}

type RefreshWorker struct {
	consumer MessageConsumer
	views    ActivityViews
	exporter GridExporter
	logger   *log.Logger
}

func NewRefreshWorker(consumer MessageConsumer, views ActivityViews, exporter GridExporter, logger *log.Logger) *RefreshWorker {
	return &RefreshWorker{
		consumer: consumer,
		views:    views,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes change events until ctx is canceled.
func (w *RefreshWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "refresh worker started")
	err := w.consumer.Consume(ctx, w.handle)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// handle rewarms every view the changed date can affect. The views are
// recomputed from the store, so a rewarm after a missed event is harmless
// and a missed event costs only cache freshness.
func (w *RefreshWorker) handle(ctx context.Context, msg *amqp.RecordsChangedMessage) error {
	date := activity.Normalize(msg.Date)
	year, err := yearOf(date)
	if err != nil {
		return fmt.Errorf("resolve year for %q: %w", msg.Date, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	grid, err := w.views.Calendar(ctx, year)
	if err != nil {
		return fmt.Errorf("rewarm calendar %d: %w", year, err)
	}
	if _, err := w.views.Streaks(ctx, activity.Today(), 0); err != nil {
		return fmt.Errorf("rewarm streaks: %w", err)
	}
	if msg.Scope == amqp.ScopeWorkRecords {
		if _, err := w.views.DaySummary(ctx, date); err != nil {
			return fmt.Errorf("rewarm day summary %s: %w", date, err)
		}
	}

	if w.exporter != nil {
		if err := w.exporter.ExportYear(ctx, grid); err != nil {
			// Mirroring is best-effort; the durable views are already fresh.
			w.logger.Warn("grid export failed", log.FieldYear, year, log.FieldError, err)
		}
	}

	w.logger.InfoContext(ctx, "views refreshed",
		log.FieldScope, msg.Scope, log.FieldDate, string(date), log.FieldYear, year)
	return nil
}

func yearOf(date activity.Day) (int, error) {
	if len(date) < 4 {
		return 0, fmt.Errorf("malformed date %q", date)
	}
	return strconv.Atoi(string(date)[:4])
}
