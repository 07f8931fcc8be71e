package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/storefront_backend/internal/adapters/notify"
	"github.com/SscSPs/storefront_backend/internal/mq"
	"github.com/SscSPs/storefront_backend/internal/platform/config"
	"github.com/spf13/cobra"
)

// mailerCmd drains the login link queue into the delivery webhook. Outside
// production it may run without one and log the links instead.
var mailerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Consume queued login links and deliver them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required for the mailer")
		}
		if cfg.IsProduction && cfg.LoginLinkWebhookURL == "" {
			// Consuming would ack links that nobody receives.
			return errors.New("LOGIN_LINK_WEBHOOK_URL is required for the mailer in production")
		}

		client, err := mq.NewRabbitMQClient(mq.RabbitMQConfig{URL: cfg.RabbitMQURL, QueueDurable: true, PrefetchCount: 10})
		if err != nil {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		queue := mq.New(client)
		defer queue.Close()

		logger := slog.Default()
		logger.Info("Mailer consuming login links", slog.String("queue", cfg.LoginLinkQueue))
		err = queue.Subscribe(cmd.Context(), cfg.LoginLinkQueue, notify.ConsumeDeliveries(deliveryNotifier(cfg, logger)))
		if err != nil && cmd.Context().Err() == nil {
			return fmt.Errorf("mailer stopped: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mailerCmd)
}
