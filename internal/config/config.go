// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP (optional; empty URL disables change events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror (optional; empty spreadsheet id disables export)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Derived-view cache
	CacheTTL time.Duration

	// Streak window supplied to the engine, in days
	StreakWindowDays int

	// Rate limiting
	RateLimitPerMin int
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/garagelog.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "garagelog"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "activity_refresh"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Activity"),

		CacheTTL:         getEnvDuration("CACHE_TTL", 5*time.Minute),
		StreakWindowDays: getEnvInt("STREAK_WINDOW_DAYS", 365),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_RPM", 120),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.SQLiteDBPath) == "" {
		errors = append(errors, "sqlite db path cannot be empty")
	}

	if c.AMQPURL != "" {
		if c.AMQPExchange == "" {
			errors = append(errors, "amqp exchange cannot be empty when AMQP is enabled")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "amqp queue cannot be empty when AMQP is enabled")
		}
	}

	if c.CacheTTL <= 0 {
		errors = append(errors, "cache ttl must be positive")
	}

	if c.StreakWindowDays < 1 {
		errors = append(errors, fmt.Sprintf("streak window must be at least 1 day, got %d", c.StreakWindowDays))
	}

	if c.RateLimitPerMin < 1 {
		errors = append(errors, fmt.Sprintf("rate limit must be at least 1 rpm, got %d", c.RateLimitPerMin))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
