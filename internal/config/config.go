package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr      = ":8080"
	defaultDBPath          = "vigil.db"
	defaultReclaimInterval = time.Second

	envListenAddr      = "VIGIL_LISTEN_ADDR"
	envDBPath          = "VIGIL_DB_PATH"
	envLogLevel        = "VIGIL_LOG_LEVEL"
	envReclaimInterval = "VIGIL_RECLAIM_INTERVAL"
	envExitWhenIdle    = "VIGIL_EXIT_WHEN_IDLE"
	envRestorePending  = "VIGIL_RESTORE_PENDING"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr      string
	DBPath          string
	LogLevel        slog.Level
	ReclaimInterval time.Duration
	ExitWhenIdle    bool
	RestorePending  bool
}

// Load reads configuration from environment variables with sensible defaults.
// Malformed durations and booleans fall back to their defaults.
func Load() Config {
	cfg := Config{
		ListenAddr:      defaultListenAddr,
		DBPath:          defaultDBPath,
		LogLevel:        slog.LevelInfo,
		ReclaimInterval: defaultReclaimInterval,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envReclaimInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReclaimInterval = d
		}
	}
	cfg.ExitWhenIdle = parseBool(os.Getenv(envExitWhenIdle))
	cfg.RestorePending = parseBool(os.Getenv(envRestorePending))

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
