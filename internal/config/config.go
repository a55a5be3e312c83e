package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	ListenAddr string

	RedisURL    string
	DatabaseURL string
	WebhookURL  string

	// Chess960 switches new games to a random starting position.
	Chess960 bool

	// DefaultTolerance is the rating gap accepted when the client
	// does not declare one.
	DefaultTolerance int

	// PresetsPath optionally overrides the embedded time-control catalog.
	PresetsPath string

	Presets []TimeControlPreset
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:       ":8080",
		DefaultTolerance: 400,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.WebhookURL = strings.TrimSpace(os.Getenv("WEBHOOK_URL"))
	cfg.PresetsPath = strings.TrimSpace(os.Getenv("TIME_CONTROL_PRESETS"))

	if v := strings.TrimSpace(os.Getenv("CHESS960")); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.Chess960 = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_RATING_TOLERANCE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, errors.New("DEFAULT_RATING_TOLERANCE must be a positive integer")
		}
		cfg.DefaultTolerance = n
	}

	presets, err := LoadPresets(cfg.PresetsPath)
	if err != nil {
		return nil, err
	}
	cfg.Presets = presets

	return cfg, nil
}
