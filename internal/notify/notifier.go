// Package notify delivers user-facing notifications. Delivery is
// fire-and-forget: failures are logged and dropped, they never affect the
// transaction that produced them.
package notify

import (
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

// Notifier sends a notification to a single user.
type Notifier interface {
	Notify(userID uint, title, body string) error
}

// LogNotifier writes notifications to the application log. It is the
// fallback when no webhook is configured.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(userID uint, title, body string) error {
	n.log.Info().
		Uint("user_id", userID).
		Str("title", title).
		Str("body", body).
		Msg("Notification")
	return nil
}
