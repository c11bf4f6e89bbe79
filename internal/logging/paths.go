package logging

import (
	"os"
	"path/filepath"
)

// DataHome returns the root directory for this module's persisted state
// (SPEC_FULL.md §6 Persisted file layout): $XDG_DATA_HOME/amanmcp-memory,
// falling back to ~/.amanmcp-memory.
func DataHome() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "amanmcp-memory")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "amanmcp-memory")
	}
	return filepath.Join(home, ".amanmcp-memory")
}

// LogDir returns the append-only log directory under the data home.
func LogDir() string {
	return filepath.Join(DataHome(), "logs")
}

// DefaultLogPath returns the default structured log file path.
func DefaultLogPath() string {
	return filepath.Join(LogDir(), "amanmcp-memory.log")
}

// SessionEndLogPath returns the append-only textual session-end log
// (SPEC_FULL.md §4.5 session_end, distinct from the structured slog output).
func SessionEndLogPath() string {
	return filepath.Join(LogDir(), "sessions.log")
}

// EnsureLogDir creates the log directory if it does not already exist.
func EnsureLogDir() error {
	return os.MkdirAll(LogDir(), 0o755)
}
