// Package logging sets up structured logging for amanmcp-memory: a rotating
// JSON file handler, optionally multiplexed to stderr, built on log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls where and how logs are written.
type Config struct {
	Level         string
	FilePath      string
	MaxSizeMB     int
	MaxFiles      int
	WriteToStderr bool
}

// DefaultConfig returns the logging configuration used by the MCP server and
// CLI in normal operation: info level, rotating file only, no stderr noise
// (stdio is reserved for the MCP transport).
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      3,
		WriteToStderr: false,
	}
}

// DebugConfig returns a verbose configuration suitable for CLI debugging,
// where stderr is not contended by a stdio protocol.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.WriteToStderr = true
	return cfg
}

// Setup builds a slog.Logger per cfg and returns it along with a close
// function the caller must defer.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	rw, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logging: %w", err)
	}

	var out io.Writer = rw
	if cfg.WriteToStderr {
		out = io.MultiWriter(rw, os.Stderr)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})
	logger := slog.New(handler)

	closer := func() {
		rw.Sync()
		rw.Close()
	}
	return logger, closer, nil
}

// SetupDefault configures logging with DefaultConfig and installs the
// result as the process-wide default logger.
func SetupDefault() (func(), error) {
	logger, closer, err := Setup(DefaultConfig())
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromString exposes parseLevel for callers outside this package. Names
// match case-insensitively; an unrecognized name maps to slog.LevelInfo.
func LevelFromString(level string) slog.Level {
	return parseLevel(level)
}
