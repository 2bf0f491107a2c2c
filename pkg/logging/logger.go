// Package logging configures zerolog for the CLI and hands out component loggers.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error, disabled.
	// Unknown values fall back to info.
	Level string

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output defaults to os.Stderr. Stdout is left to exported data.
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to a zerolog.Level. "warning" is
// accepted as an alias of "warn"; unknown names yield info.
func ParseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return parsed
}

// NewLogger creates a logger tagged with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Level guidelines:
//
// Debug: per-request and per-page flow
//   - page fetched (cursor, item count)
//   - response cache hit/miss
//   - slot populated or shared in-flight load
//
// Info: completed work
//   - drain finished (pages, items, duration)
//   - export written, server started
//
// Warn: degraded but continuing
//   - retry after 5xx, 429 backoff
//   - redis errors (request goes to Notion)
//
// Error: the operation failed
//   - retries exhausted, drain aborted
//   - configuration errors
//
// Context fields:
//   - component: notion-client, pagination, cache, blog, cli
//   - endpoint: query, database, block_children
//   - error_class: client, server, rate_limit, network, malformed
//   - cursor, pages, items, slot
