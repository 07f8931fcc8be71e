package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/storefront_backend/internal/adapters/database/pgsql"
	"github.com/SscSPs/storefront_backend/internal/adapters/database/sqlite"
	portsrepo "github.com/SscSPs/storefront_backend/internal/core/ports/repositories"
	"github.com/SscSPs/storefront_backend/internal/platform/config"
	"github.com/SscSPs/storefront_backend/pkg/database"
)

// openRepositories connects the configured credential store. For postgres the
// schema is migrated first when migrateUp is set; sqlite applies its embedded
// schema on open.
func openRepositories(ctx context.Context, cfg *config.Config, migrateUp bool) (portsrepo.RepositoryProvider, func(), error) {
	logger := slog.Default()

	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("SQLite credential store opened", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryContainer(store), func() { _ = store.Close() }, nil

	default:
		if migrateUp {
			if err := runMigrations(cfg, database.Up); err != nil {
				return portsrepo.RepositoryProvider{}, nil, err
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
	}
}

func runMigrations(cfg *config.Config, dir database.Direction) error {
	logger := slog.Default()
	logger.Info("Running database migrations...", slog.String("direction", string(dir)))

	changed, err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, dir)
	if err != nil {
		return err
	}
	if changed {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}
	return nil
}
