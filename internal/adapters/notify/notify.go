// Package notify delivers login links to their owners.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/mq"
)

const kindLoginLink = "login_link"

// QueueNotifier publishes deliveries to a queue for an out-of-process mailer.
type QueueNotifier struct {
	mq    *mq.MQ
	queue string
}

// NewQueueNotifier creates a notifier publishing to queue.
func NewQueueNotifier(m *mq.MQ, queue string) *QueueNotifier {
	return &QueueNotifier{mq: m, queue: queue}
}

func (n *QueueNotifier) Deliver(ctx context.Context, delivery domain.LoginLinkDelivery) error {
	data, err := json.Marshal(delivery)
	if err != nil {
		return fmt.Errorf("failed to encode login link delivery: %w", err)
	}
	if _, err := n.mq.Publish(ctx, n.queue, data, map[string]string{"kind": kindLoginLink}); err != nil {
		return fmt.Errorf("failed to publish login link delivery: %w", err)
	}
	return nil
}

// LogNotifier writes deliveries to the log. The link itself is only written
// when revealURL is set, which is never the case in production.
type LogNotifier struct {
	logger    *slog.Logger
	revealURL bool
}

// NewLogNotifier creates a notifier that logs deliveries.
func NewLogNotifier(logger *slog.Logger, revealURL bool) *LogNotifier {
	return &LogNotifier{logger: logger, revealURL: revealURL}
}

func (n *LogNotifier) Deliver(ctx context.Context, delivery domain.LoginLinkDelivery) error {
	attrs := []any{
		slog.String("email", delivery.Email),
		slog.Time("expires_at", delivery.ExpiresAt),
	}
	if n.revealURL {
		attrs = append(attrs, slog.String("url", delivery.URL))
	}
	n.logger.InfoContext(ctx, "Login link ready for delivery", attrs...)
	return nil
}

// WebhookNotifier POSTs each delivery as JSON to an email sending endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier posting to url. A nil client gets a
// 10 second timeout.
func NewWebhookNotifier(url string, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookNotifier{url: url, client: client}
}

func (n *WebhookNotifier) Deliver(ctx context.Context, delivery domain.LoginLinkDelivery) error {
	body, err := json.Marshal(delivery)
	if err != nil {
		return fmt.Errorf("failed to encode login link delivery: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build login link webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("login link webhook failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("login link webhook returned %s", resp.Status)
	}
	return nil
}

// ConsumeDeliveries returns an mq.Handler that decodes queued deliveries and
// passes them to next.
func ConsumeDeliveries(next portssvc.LoginLinkNotifier) mq.Handler {
	return func(ctx context.Context, msg mq.Message) error {
		if kind := msg.Attributes["kind"]; kind != "" && kind != kindLoginLink {
			return nil
		}
		var delivery domain.LoginLinkDelivery
		if err := json.Unmarshal(msg.Data, &delivery); err != nil {
			// Malformed messages are dropped, not requeued.
			slog.Default().WarnContext(ctx, "Dropping malformed login link message", slog.String("message_id", msg.ID))
			return nil
		}
		return next.Deliver(ctx, delivery)
	}
}

var (
	_ portssvc.LoginLinkNotifier = (*QueueNotifier)(nil)
	_ portssvc.LoginLinkNotifier = (*LogNotifier)(nil)
	_ portssvc.LoginLinkNotifier = (*WebhookNotifier)(nil)
)
