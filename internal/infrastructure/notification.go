package infrastructure

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/yourusername/khinsider-go/internal/domain"
	"github.com/yourusername/khinsider-go/pkg/format"
)

// NotificationService handles sending desktop notifications
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var args []string
	switch n.config.Method {
	case "osascript":
		args = []string{"-e", fmt.Sprintf(`display notification %q with title %q`, message, title)}
	case "notify-send":
		args = []string{title, message}
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	command := commandLine(n.config.Method, args...)
	if err := n.run(n.config.Method, args...); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("command", command),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent", zap.String("command", command))

	return nil
}

// NotifySessionCompleted sends notification when every item of a collection is downloaded
func (n *NotificationService) NotifySessionCompleted(collection string, totals *domain.SessionTotals) {
	title := "Download Completed"
	message := fmt.Sprintf("%s: %d files, %s", truncateString(collection, 40), totals.Count, format.Bytes(totals.Bytes))
	n.Send(title, message)
}

// NotifySessionFailed sends notification when a session aborts
func (n *NotificationService) NotifySessionFailed(collection string, err error) {
	title := "Download Failed"
	message := fmt.Sprintf("%s: %s", truncateString(collection, 40), truncateString(err.Error(), 80))
	n.Send(title, message)
}

// truncateString truncates a string to the specified number of runes
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
