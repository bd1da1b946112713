package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sandeepkv93/todod/internal/config"
	"github.com/sandeepkv93/todod/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply or roll back the SQLite schema",
		Long: `Migrate runs the embedded schema scripts against the configured SQLite
database. The TUI already migrates up on start; down drops every table.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Storage.Backend != storage.BackendSQLite {
				return fmt.Errorf("migrate needs the sqlite backend, config uses %q", cfg.Storage.Backend)
			}
			db, err := sqlx.Open("sqlite3", cfg.Storage.SQLitePath)
			if err != nil {
				return fmt.Errorf("open sqlite: %w", err)
			}
			defer db.Close()

			ctx := cmd.Context()
			switch args[0] {
			case "up":
				err = storage.MigrateUp(ctx, db.DB)
			case "down":
				err = storage.MigrateDown(ctx, db.DB)
			default:
				return fmt.Errorf("unknown direction %q, want up or down", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: %s\n", args[0], cfg.Storage.SQLitePath)
			return nil
		},
	}
}
