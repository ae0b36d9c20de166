// Package config loads the application configuration: a JSON file with
// an environment overlay, validated before anything else starts.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/toonknapen/racemonitorsdk/logging"
)

// Environment variable names recognized by the overlay.
const (
	EnvRaceID   = "RACEMONITOR_RACE_ID"
	EnvWsURL    = "RACEMONITOR_WS_URL"
	EnvWsKey    = "RACEMONITOR_WS_KEY"
	EnvLogLevel = "RACEMONITOR_LOG_LEVEL"
)

// Config is the application configuration file.
type Config struct {
	RaceID       string         `json:"race_id"`
	WebsocketURL string         `json:"websocket_url"`
	WebsocketKey string         `json:"websocket_key"`
	Logging      logging.Config `json:"logging_config"`
}

// Default returns the configuration used when no file is given: console
// logging at INFO, credentials from the environment.
func Default() *Config {
	return &Config{
		Logging: logging.Config{
			Enabled:      true,
			LogToConsole: true,
			Level:        "INFO",
		},
	}
}

// Load reads the JSON configuration file and overlays values from the
// process environment. A .env file in the working directory, when
// present, is loaded first; variables already set in the environment
// win over it.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv(EnvRaceID); v != "" {
		cfg.RaceID = v
	}
	if v := os.Getenv(EnvWsURL); v != "" {
		cfg.WebsocketURL = v
	}
	if v := os.Getenv(EnvWsKey); v != "" {
		cfg.WebsocketKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate rejects configurations that would otherwise fail deep inside
// a run.
func (cfg *Config) Validate() error {
	if cfg.Logging.Enabled && !cfg.Logging.LogToFile && !cfg.Logging.LogToConsole {
		return fmt.Errorf("logging_config: at least one of log_to_file and log_to_console must be enabled")
	}
	if cfg.Logging.LogToFile && cfg.Logging.LogFilePath == "" {
		return fmt.Errorf("logging_config: log_to_file requires log_file_path")
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging_config: %w", err)
	}
	return nil
}
