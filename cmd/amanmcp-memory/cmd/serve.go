package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanmcp-memory/internal/config"
	"github.com/Aman-CERP/amanmcp-memory/internal/dispatch"
	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
	"github.com/Aman-CERP/amanmcp-memory/internal/mcpserver"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server over stdio",
		Long: `Starts the MCP server, exposing memory_search, memory_write, memory_delete,
file_search, project_context, session_bridge, decision_log, verify_identity,
identity_set, and recommend_tech over stdio. The host's hook transport is
expected to invoke "amanmcp-memory hook <event>" separately.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	d := dispatch.New(st, embed.Get())
	srv := mcpserver.NewServer(d, nil)
	return srv.Serve(ctx)
}
