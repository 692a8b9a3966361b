// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"labcalc/internal/history"
)

// MemoryStore selects the in-process store instead of a SQLite file.
const MemoryStore = "memory"

type Config struct {
	// Addr is the listen address.
	Addr string
	// Store is MemoryStore or the path of a SQLite database.
	Store           string
	HistoryLimit    int
	LogLevel        string
	Telemetry       bool
	ServiceName     string
	ShutdownTimeout time.Duration
}

func defaults() Config {
	return Config{
		Addr:            ":8080",
		Store:           "labcalc.db",
		HistoryLimit:    history.DefaultLimit,
		LogLevel:        "info",
		Telemetry:       true,
		ServiceName:     "labcalc",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load applies .env files (default .env) and then reads the environment.
func Load(files ...string) (Config, error) {
	if err := loadDotEnv(files...); err != nil {
		return Config{}, err
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, falling back to defaults for unset
// or blank variables.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := defaults()

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("LABCALC_ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := get("LABCALC_STORE"); ok {
		cfg.Store = v
	}
	if v, ok := get("LABCALC_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("OTEL_SERVICE_NAME"); ok {
		cfg.ServiceName = v
	}

	if v, ok := get("LABCALC_HISTORY_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("LABCALC_HISTORY_LIMIT: want a positive integer, got %q", v)
		}
		cfg.HistoryLimit = n
	}

	if v, ok := get("LABCALC_TELEMETRY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("LABCALC_TELEMETRY: %w", err)
		}
		cfg.Telemetry = b
	}

	if v, ok := get("LABCALC_SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("LABCALC_SHUTDOWN_TIMEOUT: want a positive duration, got %q", v)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}
