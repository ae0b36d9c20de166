// Package logging builds the zerolog loggers the rest of the module
// injects, and stamps every event with a transaction id so one run can
// be traced end to end.
package logging

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Config mirrors the logging_config block of the configuration file.
type Config struct {
	Enabled      bool   `json:"enabled"`
	LogToFile    bool   `json:"log_to_file"`
	LogToConsole bool   `json:"log_to_console"`
	LogFilePath  string `json:"log_file_path"`
	Level        string `json:"level"`
	TimeFormat   string `json:"date_format"`
}

// New builds the root logger for a run. When logging is enabled at least
// one of the file and console sinks must be too; a disabled
// configuration yields a no-op logger.
func New(cfg Config, name, transactionID string) (zerolog.Logger, error) {
	if !cfg.Enabled {
		return zerolog.Nop(), nil
	}
	if !cfg.LogToFile && !cfg.LogToConsole {
		return zerolog.Nop(), fmt.Errorf("logging is enabled but neither log_to_file nor log_to_console is")
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = zerolog.TimeFieldFormat
	}

	var sinks []io.Writer
	if cfg.LogToConsole {
		sinks = append(sinks, zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, TimeFormat: timeFormat})
	}
	if cfg.LogToFile {
		if dir := filepath.Dir(cfg.LogFilePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return zerolog.Nop(), fmt.Errorf("create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("open log file: %w", err)
		}
		sinks = append(sinks, f)
	}

	if transactionID == "" {
		transactionID = "NoTransactionID"
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(sinks...)).
		Level(level).
		With().
		Timestamp().
		Str("name", name).
		Str("transaction_id", transactionID).
		Logger()
	return logger, nil
}

// ParseLevel maps the configuration level names onto zerolog levels. The
// empty string means INFO.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToUpper(s) {
	case "", "INFO":
		return zerolog.InfoLevel, nil
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "WARNING":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	case "CRITICAL":
		return zerolog.FatalLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

const (
	transactionIDLength   = 12
	transactionIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewTransactionID returns a fresh 12-character base62 identifier.
func NewTransactionID() string {
	buf := make([]byte, transactionIDLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails on a broken platform
		return "NoTransactionID"
	}
	id := make([]byte, transactionIDLength)
	for i, b := range buf {
		id[i] = transactionIDAlphabet[int(b)%len(transactionIDAlphabet)]
	}
	return string(id)
}
