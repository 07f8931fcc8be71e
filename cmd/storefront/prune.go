package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/services"
	"github.com/SscSPs/storefront_backend/internal/platform/config"
	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune-login-links",
	Short: "Delete expired one-time login links",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		repos, closeRepos, err := openRepositories(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer closeRepos()

		// Pruning never delivers, so the notifier is unused.
		links := services.NewLoginLinkService(repos.LoginLinkRepo, nil, cfg.LoginLinkTTL, cfg.LoginLinkBaseURL)
		n, err := links.PruneExpired(cmd.Context())
		if err != nil {
			return fmt.Errorf("prune failed: %w", err)
		}
		slog.Info("Pruned expired login links", slog.Int64("count", n), slog.Time("before", time.Now().UTC()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
