package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the engine.
type Config struct {
	DatabaseURL   string
	HTTPAddr      string
	SweepInterval time.Duration // how often the cron trigger runs the deadline sweep
	Cooldown      time.Duration // minimum gap between upcoming-deadline scans
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:      strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		SweepInterval: 10 * time.Minute,
		Cooldown:      5 * time.Minute,
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "task_engine.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	var err error
	if cfg.SweepInterval, err = parseMinutes("SWEEP_INTERVAL_MINUTES", cfg.SweepInterval); err != nil {
		return cfg, err
	}
	if cfg.Cooldown, err = parseMinutes("COOLDOWN_MINUTES", cfg.Cooldown); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func parseMinutes(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0, fmt.Errorf("%s: expected a positive integer, got %q", key, raw)
	}
	return time.Duration(minutes) * time.Minute, nil
}
