package main

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/storefront_backend/internal/adapters/notify"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/mq"
	"github.com/SscSPs/storefront_backend/internal/platform/config"
)

// newNotifier publishes login links to RabbitMQ when configured and delivers
// them in process otherwise.
func newNotifier(cfg *config.Config, logger *slog.Logger) (portssvc.LoginLinkNotifier, func(), error) {
	if cfg.RabbitMQURL == "" {
		return deliveryNotifier(cfg, logger), func() {}, nil
	}

	client, err := mq.NewRabbitMQClient(mq.RabbitMQConfig{URL: cfg.RabbitMQURL, QueueDurable: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	queue := mq.New(client)
	logger.Info("Login links will be published to queue", slog.String("queue", cfg.LoginLinkQueue))
	return notify.NewQueueNotifier(queue, cfg.LoginLinkQueue), func() { _ = queue.Close() }, nil
}

// deliveryNotifier is the notifier that actually reaches the user: the webhook
// when configured, otherwise the log. Production logs never carry the link.
func deliveryNotifier(cfg *config.Config, logger *slog.Logger) portssvc.LoginLinkNotifier {
	if cfg.LoginLinkWebhookURL != "" {
		return notify.NewWebhookNotifier(cfg.LoginLinkWebhookURL, nil)
	}
	if cfg.IsProduction {
		logger.Warn("LOGIN_LINK_WEBHOOK_URL not set, login links will not reach users")
	} else {
		logger.Warn("LOGIN_LINK_WEBHOOK_URL not set, login links will only be logged")
	}
	return notify.NewLogNotifier(logger, !cfg.IsProduction)
}
