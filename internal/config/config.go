package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Config holds everything the client reads from its environment.
type Config struct {
	BaseURL     string
	SessionPath string
	LogPath     string
	LogLevel    slog.Level
}

const defaultBaseURL = "http://localhost:4000/api"

// Load reads configuration from environment variables, falling back to
// sensible defaults for a local backend.
func Load() (Config, error) {
	cfg := Config{
		BaseURL:  defaultBaseURL,
		LogLevel: slog.LevelInfo,
	}

	if v := os.Getenv("TIMEWALLET_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if os.Getenv("TIMEWALLET_DEBUG") != "" {
		cfg.LogLevel = slog.LevelDebug
	}

	if v := os.Getenv("TIMEWALLET_SESSION_PATH"); v != "" {
		cfg.SessionPath = v
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, err
		}
		cfg.SessionPath = filepath.Join(dir, "timewallet", "session.db")
	}

	if v := os.Getenv("TIMEWALLET_LOG_PATH"); v != "" {
		cfg.LogPath = v
	} else {
		cfg.LogPath = filepath.Join(filepath.Dir(cfg.SessionPath), "timewallet.log")
	}

	return cfg, nil
}
