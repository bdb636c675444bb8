// Package bus decouples event processing from notification delivery. Each
// domain owns one bus; any number of sinks may subscribe.
package bus

import (
	"sync"

	"github.com/cryptohawk/cryptohawk/internal/logger"
	"github.com/cryptohawk/cryptohawk/internal/models"
)

// DefaultBuffer is the per-subscriber channel capacity used when a
// subscriber asks for a non-positive buffer.
const DefaultBuffer = 64

// Bus is a named fan-out channel for notifications. Publishing never blocks:
// a subscriber that cannot keep up has the notification dropped for it, which
// is acceptable for a best-effort alerting system.
type Bus struct {
	name string

	mu     sync.Mutex
	subs   []chan models.Notification
	closed bool
}

// New creates a bus. The name only appears in logs.
func New(name string) *Bus {
	return &Bus{name: name}
}

// Subscribe attaches a new subscriber and returns its channel. The channel
// is closed when the bus is closed.
func (b *Bus) Subscribe(buffer int) <-chan models.Notification {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan models.Notification, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers the notification to every subscriber. With no subscribers
// it is a no-op. Returns how many subscribers received the notification and
// how many had it dropped due to a full channel.
func (b *Bus) Publish(n models.Notification) (delivered, dropped int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, 0
	}
	for _, ch := range b.subs {
		select {
		case ch <- n:
			delivered++
		default:
			dropped++
		}
	}
	if dropped > 0 {
		logger.Warn("bus %s: dropped notification %s for %d slow subscriber(s)", b.name, n.ID, dropped)
	}
	return delivered, dropped
}

// Close closes every subscriber channel. Publish becomes a no-op afterwards.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
