package notifiersvc

import (
	"sync"

	"github.com/edutoken/dapp/core"
)

const defaultRingSize = 50

// RingNotifier keeps the most recent notifications so a display layer can
// poll them; the toast feed of the HTTP facade.
type RingNotifier struct {
	mu   sync.Mutex
	buf  []core.Notification
	size int
}

var _ core.Notifier = (*RingNotifier)(nil)

func NewRingNotifier(size int) *RingNotifier {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingNotifier{size: size}
}

func (n *RingNotifier) Notify(notification core.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.buf = append(n.buf, notification)
	if len(n.buf) > n.size {
		n.buf = n.buf[len(n.buf)-n.size:]
	}
}

// Recent returns the buffered notifications, newest last.
func (n *RingNotifier) Recent() []core.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]core.Notification(nil), n.buf...)
}

// Clear drops the buffer; called when the session is torn down.
func (n *RingNotifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.buf = nil
}
