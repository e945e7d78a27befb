package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"garagelog/internal/amqp"
	"garagelog/internal/config"
	"garagelog/internal/export"
	"garagelog/internal/log"
	"garagelog/internal/services"
	"garagelog/internal/storage"
	"garagelog/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	slog.SetDefault(logger.Logger)

	logger.Info("Starting garagelog-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the refresh worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open record store", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	amqpClient, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Sheets mirroring is optional; without a spreadsheet id the worker
	// only rewarms caches.
	var exporter worker.GridExporter
	if cfg.GoogleSpreadsheetID != "" {
		sheets, err := export.NewSheetsExporter(ctx,
			cfg.GoogleSpreadsheetID, cfg.GoogleSheetName,
			[]byte(os.Getenv("GOOGLE_CREDENTIALS_JSON")))
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", log.FieldError, err)
			os.Exit(1)
		}
		exporter = sheets
		logger.Info("Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Sheets mirror disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// The worker publishes nothing; it only reads and recomputes.
	svc := services.NewActivityService(repo, nil, cfg.CacheTTL, cfg.StreakWindowDays)
	refresh := worker.NewRefreshWorker(amqpClient, svc, exporter, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := refresh.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Refresh worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
