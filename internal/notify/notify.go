// Package notify is the best-effort notification collaborator. Delivery is
// never allowed to block or fail a primary action; callers log Send errors
// and move on.
package notify

import (
	"context"

	"go.uber.org/zap"
)

const (
	TemplateNdaReset         = "nda_reset"
	TemplateDocumentAssigned = "document_assigned"
	TemplateAccessRevoked    = "access_revoked"
)

type Notifier interface {
	Send(ctx context.Context, userID uint, template string, data map[string]string) error
}

// LogNotifier records deliveries to the application log. The production
// deployment swaps in a real delivery backend behind the same interface.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(zap.String("service", "notifier"))}
}

func (n *LogNotifier) Send(ctx context.Context, userID uint, template string, data map[string]string) error {
	n.logger.Info("Notification dispatched",
		zap.Uint("user_id", userID),
		zap.String("template", template),
		zap.Any("data", data))
	return nil
}
