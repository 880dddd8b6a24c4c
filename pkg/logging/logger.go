// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is the minimum severity written.
type LogLevel string

const (
	LevelDebug    LogLevel = "debug"
	LevelInfo     LogLevel = "info"
	LevelWarn     LogLevel = "warn"
	LevelError    LogLevel = "error"
	LevelDisabled LogLevel = "disabled"
)

// Config holds logger configuration.
type Config struct {
	Level LogLevel

	// Pretty writes colored console lines instead of JSON.
	Pretty bool

	// Output defaults to os.Stderr. The CLI keeps stdout for results.
	Output io.Writer
}

// DefaultConfig logs JSON at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// levels maps each level, and its accepted aliases, to zerolog.
var levels = map[string]struct {
	level   LogLevel
	zerolog zerolog.Level
}{
	"debug":    {LevelDebug, zerolog.DebugLevel},
	"info":     {LevelInfo, zerolog.InfoLevel},
	"warn":     {LevelWarn, zerolog.WarnLevel},
	"warning":  {LevelWarn, zerolog.WarnLevel},
	"error":    {LevelError, zerolog.ErrorLevel},
	"disabled": {LevelDisabled, zerolog.Disabled},
	"off":      {LevelDisabled, zerolog.Disabled},
	"none":     {LevelDisabled, zerolog.Disabled},
}

// ParseLevel validates a level name, case-insensitively. The empty string
// is LevelInfo.
func ParseLevel(s string) (LogLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return LevelInfo, nil
	}
	l, ok := levels[name]
	if !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l.level, nil
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(zerologLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger
}

// zerologLevel falls back to info for unknown levels.
func zerologLevel(level LogLevel) zerolog.Level {
	if l, ok := levels[strings.ToLower(string(level))]; ok {
		return l.zerolog
	}
	return zerolog.InfoLevel
}

// NewLogger returns the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Query cache flow (hit/miss, key, dedup, cancelled fetches)
//   - RPC completion with duration
//   - Snapshot persist/restore counts
//   - Wizard redirects
//
// Info: Normal operation events
//   - Completed mutations (mark all read, reference written)
//   - CLI startup with the backend URL
//
// Warn: Warning conditions that don't prevent operation
//   - Retry attempts
//   - Failed RPCs and mutations (the caller decides what to show)
//   - Optimistic updates that could not be applied
//   - Corrupt cache snapshots
//
// Error: Error conditions requiring attention
//   - Commands failing at the top level
//   - Configuration errors
//
// Context Fields:
//   - component: emitting package (rpc, query-cache, queries, wizard, prefs)
//   - method: full RPC method name
//   - code: RPC status code
//   - key: canonical query key
//   - duration: call duration
//   - attempt: retry attempt number
