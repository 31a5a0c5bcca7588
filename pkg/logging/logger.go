// Package logging configures the process-wide zerolog logger and hands out
// per-component loggers.
//
// Levels as used across catalog-selector:
//
//	debug  page loads, cache validators, stale loads dropped by the coordinator
//	info   select-first-N start/finish, server lifecycle, Redis connection
//	warn   failed page fetches, runs ended early, bypassed cache or rate limit backends
//	error  page loads that blanked the view
//
// Common fields: component, page, status, error_class, run_id, target,
// added, reason.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a level name as written in config (log.level).
type LogLevel string

// Accepted level names. "warning" is read as LevelWarn.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config selects level, format and destination.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's ConsoleWriter.
	Pretty bool

	// Output defaults to stderr when nil.
	Output io.Writer
}

// DefaultConfig is JSON at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup installs a logger built from cfg as log.Logger and returns it.
// Component loggers created afterwards inherit it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// SetupFile configures the global logger to append JSON lines to path.
// The terminal UI uses it so log output never lands on the screen. The
// returned function closes the file.
func SetupFile(cfg Config, path string) (zerolog.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	cfg.Output = f
	cfg.Pretty = false
	return Setup(cfg), f.Close, nil
}

// Discard silences the global logger.
func Discard() {
	log.Logger = zerolog.New(io.Discard)
}

// ParseLevel maps a level name to zerolog, case-insensitively. Unknown
// names fall back to info.
func ParseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger returns the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
