package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the binaries read from the environment,
// including the gameplay tunables. Numeric defaults here are tunable
// values, not contracts.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`

	RedisURL string `env:"REDIS_URL" envDefault:"localhost:6379"`

	// EventLogPath is the sqlite file for the append-only action log.
	// Empty disables the audit log.
	EventLogPath string `env:"EVENT_LOG_PATH" envDefault:"holocron-events.db"`

	NIMAPIKey  string `env:"NIM_API_KEY"`
	NIMBaseURL string `env:"NIM_BASE_URL" envDefault:"https://integrate.api.nvidia.com/v1"`
	ModelName  string `env:"MODEL_NAME" envDefault:"nvidia/llama-3.1-nemotron-70b-instruct"`

	TrustFloor float64 `env:"QUEST_TRUST_FLOOR" envDefault:"-20"`
	BandWidth  float64 `env:"REPUTATION_BAND_WIDTH" envDefault:"25"`

	WorkerID string `env:"WORKER_ID"`

	// CooldownInterval is how often the worker applies the passive
	// awareness decay tick. Zero or negative disables it.
	CooldownInterval time.Duration `env:"COOLDOWN_INTERVAL" envDefault:"60s"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LogLevel converts the raw level string to a slog level, defaulting
// to info on anything unrecognized.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.LogLevelRaw) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
