// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// RedisURL locates the Redis server holding the month cache and import
	// sessions. Defaults to "redis://localhost:6379/0".
	RedisURL string

	// JWTSecret signs and verifies bearer tokens. Required.
	JWTSecret string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// DefaultTimezone decides "today" for calendar requests without tz and
	// when the midnight rollover fires. Defaults to UTC.
	DefaultTimezone *time.Location

	ImportSessionTTL time.Duration
	MonthCacheTTL    time.Duration

	// MaxUploadBytes caps request bodies, including uploaded timetables.
	MaxUploadBytes int64

	// HijriAdjustDays shifts computed Hijri dates to follow a local moon
	// sighting. Usually -1, 0 or 1.
	HijriAdjustDays int

	// RunMigrations applies pending migrations at startup. Defaults to true.
	RunMigrations bool
}

// Load reads configuration from environment variables and returns a Config.
// Each envFile that exists is loaded first with godotenv; variables already
// set in the environment win over the file. Returns an error listing any
// required variables that are not set or values that do not parse.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config.Load: read %s: %w", f, err)
		}
	}

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing, invalid []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.DefaultTimezone, err = time.LoadLocation(getEnv("DEFAULT_TIMEZONE", "UTC")); err != nil {
		invalid = append(invalid, "DEFAULT_TIMEZONE")
	}
	if cfg.ImportSessionTTL, err = time.ParseDuration(getEnv("IMPORT_SESSION_TTL", "30m")); err != nil || cfg.ImportSessionTTL <= 0 {
		invalid = append(invalid, "IMPORT_SESSION_TTL")
	}
	if cfg.MonthCacheTTL, err = time.ParseDuration(getEnv("MONTH_CACHE_TTL", "10m")); err != nil || cfg.MonthCacheTTL <= 0 {
		invalid = append(invalid, "MONTH_CACHE_TTL")
	}
	if cfg.MaxUploadBytes, err = strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "5242880"), 10, 64); err != nil || cfg.MaxUploadBytes <= 0 {
		invalid = append(invalid, "MAX_UPLOAD_BYTES")
	}
	if cfg.HijriAdjustDays, err = strconv.Atoi(getEnv("HIJRI_ADJUST_DAYS", "0")); err != nil || cfg.HijriAdjustDays < -2 || cfg.HijriAdjustDays > 2 {
		invalid = append(invalid, "HIJRI_ADJUST_DAYS")
	}
	if cfg.RunMigrations, err = strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true")); err != nil {
		invalid = append(invalid, "RUN_MIGRATIONS")
	}
	if _, ok := logLevels[strings.ToLower(cfg.LogLevel)]; !ok {
		invalid = append(invalid, "LOG_LEVEL")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LogLevel onto slog. Load has already rejected unknown names.
func (c Config) SlogLevel() slog.Level {
	return logLevels[strings.ToLower(c.LogLevel)]
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
