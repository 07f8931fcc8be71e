package main

import (
	"log/slog"

	"github.com/SscSPs/storefront_backend/internal/adapters/database/sqlite"
	"github.com/SscSPs/storefront_backend/internal/platform/config"
	"github.com/SscSPs/storefront_backend/pkg/database"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.StoreDriver == config.StoreDriverSQLite {
			store, err := sqlite.Open(cmd.Context(), cfg.SQLitePath)
			if err != nil {
				return err
			}
			slog.Info("SQLite schema is up to date", slog.String("path", cfg.SQLitePath))
			return store.Close()
		}
		return runMigrations(cfg, database.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.StoreDriver == config.StoreDriverSQLite {
			slog.Warn("migrate down is not supported for sqlite; delete the database file instead",
				slog.String("path", cfg.SQLitePath))
			return nil
		}
		return runMigrations(cfg, database.Down)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
