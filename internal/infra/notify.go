package infra

import (
	"go.uber.org/zap"

	"github.com/gen2brain/beeep"

	"github.com/finnvos/voxd/internal/domain"
)

// DesktopNotifier implements domain.Notifier via beeep.
type DesktopNotifier struct {
	logger *zap.Logger
}

// NewNotifier creates a desktop notifier.
func NewNotifier(logger *zap.Logger) domain.Notifier {
	return &DesktopNotifier{logger: logger}
}

// Notify shows a desktop notification. Failure is logged at debug;
// notifications are advisory and must never break a transition.
func (n *DesktopNotifier) Notify(title, body string) {
	if err := beeep.Notify(title, body, ""); err != nil {
		n.logger.Debug("notification failed", zap.Error(err))
	}
}

// NopNotifier discards notifications (login mode, tests).
type NopNotifier struct{}

func (NopNotifier) Notify(title, body string) {}

var (
	_ domain.Notifier = (*DesktopNotifier)(nil)
	_ domain.Notifier = NopNotifier{}
)
