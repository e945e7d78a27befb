// Command garagelog-cli renders activity views in the terminal: the year
// heatmap, streak stats, and day receipts, straight from the local store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"garagelog/internal/activity"
	"garagelog/internal/config"
	"garagelog/internal/services"
	"garagelog/internal/storage"
)

func main() {
	_ = godotenv.Load()

	// CLI output stays clean; diagnostics go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	year := flag.Int("year", time.Now().Year(), "year to render")
	day := flag.String("day", "", "render the receipt for one date (YYYY-MM-DD) instead of the grid")
	streaks := flag.Bool("streaks", false, "print streak stats after the grid")
	flag.Parse()

	if err := run(*year, *day, *streaks); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(year int, day string, withStreaks bool) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer repo.Close()

	// No broker from the CLI; reads only need the store.
	svc := services.NewActivityService(repo, nil, cfg.CacheTTL, cfg.StreakWindowDays)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var sb strings.Builder
	if day != "" {
		summary, err := svc.DaySummary(ctx, activity.Normalize(day))
		if err != nil {
			return fmt.Errorf("compile day: %w", err)
		}
		renderDay(&sb, summary)
	} else {
		grid, err := svc.Calendar(ctx, year)
		if err != nil {
			return fmt.Errorf("build calendar: %w", err)
		}
		renderGrid(&sb, grid)

		if withStreaks {
			stats, err := svc.Streaks(ctx, activity.Today(), 0)
			if err != nil {
				return fmt.Errorf("compute streaks: %w", err)
			}
			sb.WriteString("\n")
			renderStreaks(&sb, stats)
		}
	}

	fmt.Print(sb.String())
	return nil
}
