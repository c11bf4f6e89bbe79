package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanmcp-memory/internal/config"
	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
	"github.com/Aman-CERP/amanmcp-memory/internal/indexer"
	"github.com/Aman-CERP/amanmcp-memory/internal/session"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
	"github.com/Aman-CERP/amanmcp-memory/internal/watch"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reindex the current project's source tree as files change",
		Long: `Runs a filesystem watcher over the current project, debouncing bursts of
changes and triggering the Indexer's reconciliation pass after each burst
settles. Intended to run alongside "serve" so search results stay fresh
between session_start invocations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context())
		},
	}
}

func runWatch(ctx context.Context) error {
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

	project := session.ResolveProjectName(dir)
	rec := indexer.NewReconciler(st, embed.Get())
	w := watch.New(rec, watch.DefaultDebounce, nil)
	budget := time.Duration(cfg.Indexer.HardBudgetMS) * time.Millisecond
	return w.Run(ctx, project, dir, budget)
}
