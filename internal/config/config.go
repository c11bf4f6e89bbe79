// Package config implements amanmcp-memory's layered configuration:
// hardcoded defaults, then an optional user config, then an optional
// project config, then environment variable overrides, then validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/amanmcp-memory/internal/logging"
)

// Config is the full resolved configuration for one project root. The
// ranking and chunking constants (fusion weights, heat boost, chunk cap,
// overlap) are not part of this struct: they are named constants in
// internal/search and internal/chunk, so they never change with a config
// file. Config carries paths, logging, the indexer time budgets and the
// crash-recovery grace window.
type Config struct {
	Version string `yaml:"version"`

	Paths   PathsConfig   `yaml:"paths"`
	Logging LoggingConfig `yaml:"logging"`
	Indexer IndexerConfig `yaml:"indexer"`
	Session SessionConfig `yaml:"session"`
}

// PathsConfig locates the project root and the store file. By default the
// store file is memory.db under the shared data home, one file for every
// project.
type PathsConfig struct {
	ProjectRoot string `yaml:"project_root"`
	StorePath   string `yaml:"store_path"`
}

// LoggingConfig mirrors internal/logging.Config in YAML form.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	FilePath      string `yaml:"file_path"`
	MaxSizeMB     int    `yaml:"max_size_mb"`
	MaxFiles      int    `yaml:"max_files"`
	WriteToStderr bool   `yaml:"write_to_stderr"`
}

// IndexerConfig controls the reconciliation time budgets (SPEC_FULL.md §4.3).
type IndexerConfig struct {
	SoftBudgetMS int      `yaml:"soft_budget_ms"`
	HardBudgetMS int      `yaml:"hard_budget_ms"`
	ExcludeDirs  []string `yaml:"exclude_dirs"`
	MaxFileKB    int      `yaml:"max_file_kb"`
}

// SessionConfig controls session/crash-recovery timing.
type SessionConfig struct {
	CrashGraceSeconds int `yaml:"crash_grace_seconds"`
}

// NewConfig returns the hardcoded defaults, scoped to projectRoot.
func NewConfig(projectRoot string) *Config {
	return &Config{
		Version: "1",
		Paths: PathsConfig{
			ProjectRoot: projectRoot,
			StorePath:   filepath.Join(logging.DataHome(), "memory.db"),
		},
		Logging: LoggingConfig{
			Level:         "info",
			FilePath:      logging.DefaultLogPath(),
			MaxSizeMB:     10,
			MaxFiles:      3,
			WriteToStderr: false,
		},
		Indexer: IndexerConfig{
			SoftBudgetMS: 1500,
			HardBudgetMS: 2000,
			ExcludeDirs:  defaultExcludeDirs(),
			MaxFileKB:    200,
		},
		Session: SessionConfig{
			CrashGraceSeconds: 60,
		},
	}
}

func defaultExcludeDirs() []string {
	return []string{
		".git", "node_modules", "vendor", "dist", "build", "target",
		".venv", "venv", "__pycache__", ".next", ".amanmcp-memory",
	}
}

// Load resolves configuration for the project rooted at dir: defaults,
// then ~/.config/amanmcp-memory/config.yaml if present, then
// dir/.amanmcp-memory/config.yaml if present, then AMANMCP_MEMORY_* env
// vars, then validation.
func Load(dir string) (*Config, error) {
	cfg := NewConfig(dir)

	if userPath, err := userConfigPath(); err == nil {
		if err := mergeFile(cfg, userPath); err != nil {
			return nil, fmt.Errorf("load user config: %w", err)
		}
	}

	projectPath := filepath.Join(dir, ".amanmcp-memory", "config.yaml")
	if err := mergeFile(cfg, projectPath); err != nil {
		return nil, fmt.Errorf("load project config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func userConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "amanmcp-memory", "config.yaml"), nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	mergeInto(cfg, &overlay)
	return nil
}

// mergeInto overlays non-zero fields of src onto dst, field by field, the
// same shallow-merge approach the teacher's config layer uses.
func mergeInto(dst, src *Config) {
	if src.Paths.StorePath != "" {
		dst.Paths.StorePath = src.Paths.StorePath
	}
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.FilePath != "" {
		dst.Logging.FilePath = src.Logging.FilePath
	}
	if src.Logging.MaxSizeMB != 0 {
		dst.Logging.MaxSizeMB = src.Logging.MaxSizeMB
	}
	if src.Logging.MaxFiles != 0 {
		dst.Logging.MaxFiles = src.Logging.MaxFiles
	}
	if src.Logging.WriteToStderr {
		dst.Logging.WriteToStderr = true
	}
	if src.Indexer.SoftBudgetMS != 0 {
		dst.Indexer.SoftBudgetMS = src.Indexer.SoftBudgetMS
	}
	if src.Indexer.HardBudgetMS != 0 {
		dst.Indexer.HardBudgetMS = src.Indexer.HardBudgetMS
	}
	if len(src.Indexer.ExcludeDirs) > 0 {
		dst.Indexer.ExcludeDirs = src.Indexer.ExcludeDirs
	}
	if src.Indexer.MaxFileKB != 0 {
		dst.Indexer.MaxFileKB = src.Indexer.MaxFileKB
	}
	if src.Session.CrashGraceSeconds != 0 {
		dst.Session.CrashGraceSeconds = src.Session.CrashGraceSeconds
	}
}

// applyEnvOverrides lets AMANMCP_MEMORY_* environment variables win over
// both config files, matching the teacher's precedence order.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AMANMCP_MEMORY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AMANMCP_MEMORY_STORE_PATH"); v != "" {
		cfg.Paths.StorePath = v
	}
	if v := os.Getenv("AMANMCP_MEMORY_DEBUG"); v == "1" || v == "true" {
		cfg.Logging.Level = "debug"
		cfg.Logging.WriteToStderr = true
	}
}

// Validate checks the resolved configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Paths.ProjectRoot == "" {
		return fmt.Errorf("config: project_root is required")
	}
	if c.Paths.StorePath == "" {
		return fmt.Errorf("config: store_path is required")
	}
	if c.Indexer.SoftBudgetMS <= 0 || c.Indexer.HardBudgetMS <= 0 {
		return fmt.Errorf("config: indexer budgets must be positive")
	}
	if c.Indexer.HardBudgetMS < c.Indexer.SoftBudgetMS {
		return fmt.Errorf("config: hard_budget_ms must be >= soft_budget_ms")
	}
	if c.Session.CrashGraceSeconds <= 0 {
		return fmt.Errorf("config: crash_grace_seconds must be positive")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.Logging.Level)
	}
	return nil
}

// SoftBudget returns the indexer's soft time budget as a time.Duration.
func (c *Config) SoftBudget() time.Duration {
	return time.Duration(c.Indexer.SoftBudgetMS) * time.Millisecond
}

// HardBudget returns the indexer's hard time budget as a time.Duration.
func (c *Config) HardBudget() time.Duration {
	return time.Duration(c.Indexer.HardBudgetMS) * time.Millisecond
}

// CrashGrace returns the session crash-recovery grace window.
func (c *Config) CrashGrace() time.Duration {
	return time.Duration(c.Session.CrashGraceSeconds) * time.Second
}

// WriteYAML serializes cfg to path, creating parent directories as needed.
func WriteYAML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
