package notifiersvc

import (
	"log"

	"github.com/edutoken/dapp/core"
)

// ConsoleNotifier prints notifications to the standard logger. Dev default.
type ConsoleNotifier struct {
	std *log.Logger
}

var _ core.Notifier = (*ConsoleNotifier)(nil)

func NewConsoleNotifier(std *log.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{std: std}
}

func (n *ConsoleNotifier) Notify(notification core.Notification) {
	n.std.Printf("[%s] %s", notification.Level, notification.Message)
}
