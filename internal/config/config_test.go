package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TrustFloor != -20 {
		t.Errorf("TrustFloor = %v, want -20", cfg.TrustFloor)
	}
	if cfg.BandWidth != 25 {
		t.Errorf("BandWidth = %v, want 25", cfg.BandWidth)
	}
	if cfg.CooldownInterval != 60*time.Second {
		t.Errorf("CooldownInterval = %v, want 60s", cfg.CooldownInterval)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("QUEST_TRUST_FLOOR", "-35.5")
	t.Setenv("REDIS_URL", "redis-host:6380")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.TrustFloor != -35.5 {
		t.Errorf("TrustFloor = %v, want -35.5", cfg.TrustFloor)
	}
	if cfg.RedisURL != "redis-host:6380" {
		t.Errorf("RedisURL = %q, want redis-host:6380", cfg.RedisURL)
	}
}

func TestConfig_LogLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevelRaw: tt.raw}
		if got := cfg.LogLevel(); got != tt.want {
			t.Errorf("LogLevel(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
