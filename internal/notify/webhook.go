package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/maysotoledo/agenda-epc/internal/config"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

// WebhookNotifier posts notifications to an external delivery endpoint
// (the surrounding application's notification gateway).
type WebhookNotifier struct {
	webhookURL string
	enabled    bool
	client     *http.Client
	log        *logger.Logger
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(cfg *config.NotifierConfig, log *logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: cfg.WebhookURL,
		enabled:    cfg.Enabled,
		client:     &http.Client{},
		log:        log,
	}
}

// message is the webhook payload.
type message struct {
	UserID uint   `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Notify posts the notification to the webhook.
func (n *WebhookNotifier) Notify(userID uint, title, body string) error {
	if !n.enabled {
		n.log.Debug().Msg("Notifier is disabled, skipping message")
		return nil
	}

	payload, err := json.Marshal(message{UserID: userID, Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}

	n.log.Debug().
		Uint("user_id", userID).
		Str("title", title).
		Msg("Sent notification")

	return nil
}
