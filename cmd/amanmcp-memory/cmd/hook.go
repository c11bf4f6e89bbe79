package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanmcp-memory/internal/config"
	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
	"github.com/Aman-CERP/amanmcp-memory/internal/indexer"
	"github.com/Aman-CERP/amanmcp-memory/internal/logging"
	"github.com/Aman-CERP/amanmcp-memory/internal/session"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// fileChangePayload is the file_change hook's stdin shape
// (SPEC_FULL.md §6: {tool_name, tool_input:{file_path | notebook_path}}).
type fileChangePayload struct {
	ToolName  string `json:"tool_name"`
	ToolInput struct {
		FilePath     string `json:"file_path"`
		NotebookPath string `json:"notebook_path"`
	} `json:"tool_input"`
}

func newHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "hook [session_start|session_end|file_change]",
		Short:     "Handle a lifecycle event from the host's hook transport",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"session_start", "session_end", "file_change"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd, args[0])
		},
	}
	return cmd
}

func runHook(cmd *cobra.Command, event string) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Paths.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	rec := indexer.NewReconciler(st, embed.Get())
	crashGrace := time.Duration(cfg.Session.CrashGraceSeconds) * time.Second
	mgr := session.NewManager(st, rec, crashGrace)

	switch event {
	case "session_start":
		return runSessionStart(cmd.Context(), mgr, dir)
	case "session_end":
		return runSessionEnd(mgr)
	case "file_change":
		return runFileChange(cmd, mgr, dir)
	default:
		return fmt.Errorf("unknown hook event %q; expected session_start, session_end, or file_change", event)
	}
}

func runSessionStart(ctx context.Context, mgr *session.Manager, dir string) error {
	_, err := mgr.Start(ctx, dir, 1500*time.Millisecond)
	if err != nil {
		slog.Error("session_start failed", slog.String("error", err.Error()))
	}
	return err
}

func runSessionEnd(mgr *session.Manager) error {
	desc, err := session.ReadDescriptor()
	if err != nil || desc == nil {
		// No active session: nothing to close.
		return nil
	}
	logPath := logging.SessionEndLogPath()
	return mgr.End(desc.SessionID, func(line string) error {
		if err := logging.EnsureLogDir(); err != nil {
			return err
		}
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.WriteString(line + "\n")
		return err
	})
}

func runFileChange(cmd *cobra.Command, mgr *session.Manager, dir string) error {
	body, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		slog.Debug("file_change: failed reading stdin", slog.String("error", err.Error()))
		return nil
	}
	var payload fileChangePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Debug("file_change: malformed payload", slog.String("error", err.Error()))
		return nil
	}
	path := payload.ToolInput.FilePath
	if path == "" {
		path = payload.ToolInput.NotebookPath
	}
	if path == "" {
		return nil
	}

	desc, err := session.ReadDescriptor()
	if err != nil || desc == nil {
		return nil
	}

	action := store.ActionEdit
	if strings.EqualFold(payload.ToolName, "write") {
		action = store.ActionCreate
	}
	rel := strings.TrimPrefix(path, dir+"/")
	mgr.RecordFileChange(desc.SessionID, desc.Project, rel, action)
	return nil
}
