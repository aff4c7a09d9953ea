// Package dummynotifier captures notifications for assertions in tests.
package dummynotifier

import (
	"sync"

	"github.com/edutoken/dapp/core"
)

type Service struct {
	mu   sync.Mutex
	sent []core.Notification
}

var _ core.Notifier = (*Service)(nil)

func NewService() *Service {
	return &Service{}
}

func (svc *Service) Notify(n core.Notification) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = append(svc.sent, n)
}

func (svc *Service) Sent() []core.Notification {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.Notification(nil), svc.sent...)
}

// Last returns the most recent notification, if any.
func (svc *Service) Last() (core.Notification, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.sent) == 0 {
		return core.Notification{}, false
	}
	return svc.sent[len(svc.sent)-1], true
}
