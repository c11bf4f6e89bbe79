package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanmcp-memory/internal/config"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the store's schema",
		Long: `Opens (creating if necessary) the shared store file and applies the
schema, FTS5 virtual tables, and vector index. Safe to run repeatedly:
schema application is idempotent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd)
		},
	}
}

func runMigrate(cmd *cobra.Command) error {
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

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "store ready at %s (fts5=%v)\n", cfg.Paths.StorePath, st.FTSEnabled())
	return err
}
