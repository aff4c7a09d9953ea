package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
	NotifyInfo    NotificationLevel = "info"
)

// Notification is a transient user-facing message (the toast of the web UI).
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"` // UTC
}

func NewNotification(level NotificationLevel, msg string) Notification {
	return Notification{
		ID:        uuid.New(),
		Level:     level,
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	}
}

// Notifier is any service that can surface transient notifications.
type Notifier interface {
	Notify(n Notification)
}

// Helpers so call sites stay terse.

func NotifySuccessf(n Notifier, format string, args ...interface{}) {
	n.Notify(NewNotification(NotifySuccess, fmt.Sprintf(format, args...)))
}

func NotifyErrorf(n Notifier, prefix string, err error) {
	n.Notify(NewNotification(NotifyError, prefix+": "+ErrorMessage(err)))
}

func NotifyInfof(n Notifier, format string, args ...interface{}) {
	n.Notify(NewNotification(NotifyInfo, fmt.Sprintf(format, args...)))
}
