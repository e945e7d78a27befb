// Package storage is the sqlite-backed record store feeding the activity
// engine. It performs loose date prefiltering in SQL; exact civil-date
// bucketing always happens in the engine so storage and engine can never
// disagree about which day a record belongs to.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"garagelog/internal/activity"
	"garagelog/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertContribution stores a contribution record and returns its id.
func (r *SQLiteRepository) InsertContribution(ctx context.Context, rec core.ContributionRecord) (string, error) {
	var metadata []byte
	if len(rec.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(rec.Metadata)
		if err != nil {
			return "", fmt.Errorf("marshal metadata: %w", err)
		}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contributions (type, occurred_at, count, vehicle_id, metadata)
		 VALUES (?, ?, ?, ?, ?)`,
		string(rec.Type), rec.RawDate, rec.Count, nullable(rec.VehicleID), metadata)
	if err != nil {
		return "", fmt.Errorf("insert contribution: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("contribution id: %w", err)
	}

	slog.InfoContext(ctx, "Contribution saved",
		"id", id, "type", rec.Type, "date", rec.RawDate, "count", rec.Count)

	return strconv.FormatInt(id, 10), nil
}

// ListContributions returns contributions whose raw date's first ten
// characters fall in [from, to]. Raw dates are stored as written (ISO
// datetime or bare date), so the lexical prefix range is a superset of the
// normalized civil-date range.
func (r *SQLiteRepository) ListContributions(ctx context.Context, from, to activity.Day) ([]core.ContributionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, occurred_at, count, COALESCE(vehicle_id, ''), metadata
		 FROM contributions
		 WHERE substr(occurred_at, 1, 10) BETWEEN ? AND ?
		 ORDER BY id`,
		string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var records []core.ContributionRecord
	for rows.Next() {
		var (
			id       int64
			rec      core.ContributionRecord
			typ      string
			metadata []byte
		)
		if err := rows.Scan(&id, &typ, &rec.RawDate, &rec.Count, &rec.VehicleID, &metadata); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		rec.ID = strconv.FormatInt(id, 10)
		rec.Type = core.ContributionType(typ)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for contribution %d: %w", id, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertContractorWork stores a contractor work record and returns its id.
func (r *SQLiteRepository) InsertContractorWork(ctx context.Context, w core.ContractorWork) (string, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contractor_work
		 (description, occurred_at, organization_id, organization_name, vehicle_id,
		  labor_hours, labor_value_cents, materials_cost_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.Description, w.OccurredAt, nullable(w.OrganizationID), nullable(w.OrganizationName),
		nullable(w.VehicleID), w.LaborHours, w.LaborValue.Cents, w.MaterialsCost.Cents)
	if err != nil {
		return "", fmt.Errorf("insert contractor work: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("contractor work id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// ListContractorWork returns contractor work loosely matching one civil date.
func (r *SQLiteRepository) ListContractorWork(ctx context.Context, date activity.Day) ([]core.ContractorWork, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, occurred_at, COALESCE(organization_id, ''),
		        COALESCE(organization_name, ''), COALESCE(vehicle_id, ''),
		        labor_hours, labor_value_cents, materials_cost_cents
		 FROM contractor_work
		 WHERE substr(occurred_at, 1, 10) = ?
		 ORDER BY occurred_at, id`,
		string(date))
	if err != nil {
		return nil, fmt.Errorf("list contractor work: %w", err)
	}
	defer rows.Close()

	var out []core.ContractorWork
	for rows.Next() {
		var (
			id int64
			w  core.ContractorWork
		)
		if err := rows.Scan(&id, &w.Description, &w.OccurredAt, &w.OrganizationID,
			&w.OrganizationName, &w.VehicleID, &w.LaborHours,
			&w.LaborValue.Cents, &w.MaterialsCost.Cents); err != nil {
			return nil, fmt.Errorf("scan contractor work: %w", err)
		}
		w.ID = strconv.FormatInt(id, 10)
		out = append(out, w)
	}
	return out, rows.Err()
}

// InsertTimelineEvent stores a timeline event and returns its id.
func (r *SQLiteRepository) InsertTimelineEvent(ctx context.Context, ev core.TimelineEvent) (string, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO timeline_events
		 (title, occurred_at, vehicle_id, vehicle_name, vehicle_image, organization_id, organization_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Title, ev.OccurredAt, nullable(ev.VehicleID), nullable(ev.VehicleName),
		nullable(ev.VehicleImage), nullable(ev.OrganizationID), nullable(ev.OrganizationName))
	if err != nil {
		return "", fmt.Errorf("insert timeline event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("timeline event id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// ListTimelineEvents returns timeline events loosely matching one civil date.
func (r *SQLiteRepository) ListTimelineEvents(ctx context.Context, date activity.Day) ([]core.TimelineEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, occurred_at, COALESCE(vehicle_id, ''), COALESCE(vehicle_name, ''),
		        COALESCE(vehicle_image, ''), COALESCE(organization_id, ''), COALESCE(organization_name, '')
		 FROM timeline_events
		 WHERE substr(occurred_at, 1, 10) = ?
		 ORDER BY occurred_at, id`,
		string(date))
	if err != nil {
		return nil, fmt.Errorf("list timeline events: %w", err)
	}
	defer rows.Close()

	var out []core.TimelineEvent
	for rows.Next() {
		var (
			id int64
			ev core.TimelineEvent
		)
		if err := rows.Scan(&id, &ev.Title, &ev.OccurredAt, &ev.VehicleID, &ev.VehicleName,
			&ev.VehicleImage, &ev.OrganizationID, &ev.OrganizationName); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		ev.ID = strconv.FormatInt(id, 10)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// AddLaborLine attaches a labor line to a timeline event.
func (r *SQLiteRepository) AddLaborLine(ctx context.Context, l core.LaborLine) (string, error) {
	eventID, err := strconv.ParseInt(l.EventID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse event id %q: %w", l.EventID, err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO labor_lines (event_id, description, hours, cost_cents) VALUES (?, ?, ?, ?)`,
		eventID, l.Description, l.Hours, l.Cost.Cents)
	if err != nil {
		return "", fmt.Errorf("insert labor line: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("labor line id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// AddPartLine attaches a parts line to a timeline event.
func (r *SQLiteRepository) AddPartLine(ctx context.Context, p core.PartLine) (string, error) {
	eventID, err := strconv.ParseInt(p.EventID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse event id %q: %w", p.EventID, err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO part_lines (event_id, name, quantity, price_cents) VALUES (?, ?, ?, ?)`,
		eventID, p.Name, p.Quantity, p.Price.Cents)
	if err != nil {
		return "", fmt.Errorf("insert part line: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("part line id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// ListLaborLines returns labor lines whose parent event loosely matches
// one civil date.
func (r *SQLiteRepository) ListLaborLines(ctx context.Context, date activity.Day) ([]core.LaborLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.event_id, l.description, l.hours, l.cost_cents
		 FROM labor_lines l
		 JOIN timeline_events e ON e.id = l.event_id
		 WHERE substr(e.occurred_at, 1, 10) = ?
		 ORDER BY l.id`,
		string(date))
	if err != nil {
		return nil, fmt.Errorf("list labor lines: %w", err)
	}
	defer rows.Close()

	var out []core.LaborLine
	for rows.Next() {
		var (
			id, eventID int64
			l           core.LaborLine
		)
		if err := rows.Scan(&id, &eventID, &l.Description, &l.Hours, &l.Cost.Cents); err != nil {
			return nil, fmt.Errorf("scan labor line: %w", err)
		}
		l.ID = strconv.FormatInt(id, 10)
		l.EventID = strconv.FormatInt(eventID, 10)
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListPartLines returns parts lines whose parent event loosely matches one
// civil date.
func (r *SQLiteRepository) ListPartLines(ctx context.Context, date activity.Day) ([]core.PartLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.event_id, p.name, p.quantity, p.price_cents
		 FROM part_lines p
		 JOIN timeline_events e ON e.id = p.event_id
		 WHERE substr(e.occurred_at, 1, 10) = ?
		 ORDER BY p.id`,
		string(date))
	if err != nil {
		return nil, fmt.Errorf("list part lines: %w", err)
	}
	defer rows.Close()

	var out []core.PartLine
	for rows.Next() {
		var (
			id, eventID int64
			p           core.PartLine
		)
		if err := rows.Scan(&id, &eventID, &p.Name, &p.Quantity, &p.Price.Cents); err != nil {
			return nil, fmt.Errorf("scan part line: %w", err)
		}
		p.ID = strconv.FormatInt(id, 10)
		p.EventID = strconv.FormatInt(eventID, 10)
		out = append(out, p)
	}
	return out, rows.Err()
}

// nullable maps empty strings to NULL so optional columns stay NULL
// instead of collecting empty-string junk.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
