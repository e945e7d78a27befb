// Package export mirrors computed activity views to Google Sheets so the
// heatmap can be eyeballed outside the app.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"garagelog/internal/activity"
)

// SheetsExporter writes one row per in-year day into a named sheet tab.
type SheetsExporter struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter builds an exporter. credentialsJSON may be empty, in
// which case Application Default Credentials are used.
func NewSheetsExporter(ctx context.Context, spreadsheetID, sheetName string, credentialsJSON []byte) (*SheetsExporter, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if sheetName == "" {
		sheetName = "Activity"
	}

	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// ExportYear replaces the sheet contents with the grid's in-year days.
// Columns: date, contribution count, hour-equivalent score, band.
func (e *SheetsExporter) ExportYear(ctx context.Context, grid *activity.YearGrid) error {
	values := gridRows(grid)
	writeRange := fmt.Sprintf("%s!A1:D%d", e.sheetName, len(values))
	body := &sheets.ValueRange{Values: values}

	// Sheets API throttles aggressively; retry transient failures with
	// jittered backoff before reporting the export failed.
	err := retry.Do(
		func() error {
			if _, err := e.service.Spreadsheets.Values.Clear(
				e.spreadsheetID, e.sheetName+"!A:D", &sheets.ClearValuesRequest{},
			).Context(ctx).Do(); err != nil {
				return fmt.Errorf("clear sheet: %w", err)
			}
			if _, err := e.service.Spreadsheets.Values.Update(
				e.spreadsheetID, writeRange, body,
			).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
				return fmt.Errorf("write sheet: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(4),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Sheets export failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("export year %d: %w", grid.Year, err)
	}

	slog.InfoContext(ctx, "Year grid exported to sheet",
		"year", grid.Year, "rows", len(values)-1, "sheet", e.sheetName)
	return nil
}

// gridRows flattens a year grid to sheet rows, header first. Out-of-year
// padding cells are skipped; days without activity export as zero rows so
// the sheet always covers the whole year.
func gridRows(grid *activity.YearGrid) [][]any {
	values := [][]any{
		{"date", "count", "hours", "band"},
	}
	for week := 0; week < activity.GridWeeks; week++ {
		for dow := 0; dow < activity.DaysPerWeek; dow++ {
			cell := grid.Weeks[week][dow]
			if !cell.InYear {
				continue
			}
			count, hours := 0, 0.0
			if cell.Aggregate != nil {
				count = cell.Aggregate.Count
				hours = cell.Aggregate.Hours
			}
			values = append(values, []any{string(cell.Date), count, hours, cell.Band})
		}
	}
	return values
}
