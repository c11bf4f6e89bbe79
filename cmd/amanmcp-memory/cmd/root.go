// Package cmd provides the CLI commands for amanmcp-memory.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanmcp-memory/internal/logging"
	"github.com/Aman-CERP/amanmcp-memory/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the amanmcp-memory CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "amanmcp-memory",
		Short:   "Per-project persistent memory for AI coding assistants",
		Long:    `amanmcp-memory stores and retrieves facts, decisions, and session history for AI coding assistants, scoped per project.`,
		Version: version.Version,
	}
	root.SetVersionTemplate("amanmcp-memory version {{.Version}}\n")

	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging to stderr in addition to the log file")
	root.PersistentPreRunE = startLogging
	root.PersistentPostRunE = stopLogging

	root.AddCommand(newServeCmd())
	root.AddCommand(newHookCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func startLogging(cmd *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func stopLogging(cmd *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}
