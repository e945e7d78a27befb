package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"garagelog/internal/amqp"
	"garagelog/internal/config"
	apphttp "garagelog/internal/http"
	"garagelog/internal/log"
	"garagelog/internal/services"
	"garagelog/internal/storage"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	slog.SetDefault(logger.Logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open record store", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Change events are optional: without a broker the API still serves
	// fresh views (every read recomputes from the store), the refresh
	// worker just never hears about writes.
	var events services.ChangePublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(context.Background(), cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("Change events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Change events disabled, no AMQP URL configured")
	}

	svc := services.NewActivityService(repo, events, cfg.CacheTTL, cfg.StreakWindowDays)
	srv := apphttp.NewServer(":"+cfg.Port, svc, logger, cfg.RateLimitPerMin)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting garagelog server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
