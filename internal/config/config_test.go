package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{envListenAddr, envDBPath, envLogLevel, envReclaimInterval, envExitWhenIdle, envRestorePending} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.ListenAddr != defaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, defaultListenAddr)
	}
	if cfg.DBPath != defaultDBPath {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, defaultDBPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
	if cfg.ReclaimInterval != defaultReclaimInterval {
		t.Errorf("ReclaimInterval = %v, want %v", cfg.ReclaimInterval, defaultReclaimInterval)
	}
	if cfg.ExitWhenIdle || cfg.RestorePending {
		t.Errorf("ExitWhenIdle = %v, RestorePending = %v; want both false", cfg.ExitWhenIdle, cfg.RestorePending)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(envListenAddr, ":9090")
	t.Setenv(envDBPath, "/tmp/test.db")
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envReclaimInterval, "250ms")
	t.Setenv(envExitWhenIdle, "true")
	t.Setenv(envRestorePending, "1")

	cfg := Load()

	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":9090")
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/tmp/test.db")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelDebug)
	}
	if cfg.ReclaimInterval != 250*time.Millisecond {
		t.Errorf("ReclaimInterval = %v, want 250ms", cfg.ReclaimInterval)
	}
	if !cfg.ExitWhenIdle {
		t.Error("ExitWhenIdle = false, want true")
	}
	if !cfg.RestorePending {
		t.Error("RestorePending = false, want true")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(envReclaimInterval, "soon")
	t.Setenv(envExitWhenIdle, "maybe")

	cfg := Load()

	if cfg.ReclaimInterval != defaultReclaimInterval {
		t.Errorf("ReclaimInterval = %v, want default", cfg.ReclaimInterval)
	}
	if cfg.ExitWhenIdle {
		t.Error("ExitWhenIdle = true for malformed value")
	}

	t.Setenv(envReclaimInterval, "-1s")
	if got := Load().ReclaimInterval; got != defaultReclaimInterval {
		t.Errorf("ReclaimInterval = %v for negative value, want default", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		got := parseLogLevel(tt.input)
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerOutputsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}

	logger.Info("test message", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("logger output is not valid JSON: %v\noutput: %s", err, buf.String())
	}

	for _, key := range []string{"time", "level", "msg"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("JSON output missing expected key %q", key)
		}
	}
	if entry["msg"] != "test message" {
		t.Errorf("msg = %v, want %q", entry["msg"], "test message")
	}
}
