// Package realtime fans booking lifecycle events out to connected
// subscribers over websockets.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/fleetdesk/fleetdesk/internal/bookings"
)

// subscriberBuffer bounds how far a slow subscriber may lag before it
// is disconnected.
const subscriberBuffer = 16

// Subscription is one attached listener. Events published while it is
// attached arrive on C; the channel closes when the subscription ends.
type Subscription struct {
	ch chan []byte
}

// C returns the event channel.
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// Hub owns the subscriber set. Subscribe, Unsubscribe and Publish are
// safe for concurrent use. There is no replay: a subscriber only sees
// events published while attached.
type Hub struct {
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[*Subscription]struct{}
}

// NewHub constructs a Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger,
		subscribers: make(map[*Subscription]struct{}),
	}
}

// Subscribe attaches a new listener.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan []byte, subscriberBuffer)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe detaches a listener and closes its channel. It is safe
// to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(sub)
}

// Publish delivers the event to every attached subscriber. Delivery is
// best-effort: a subscriber that cannot keep up is disconnected, and
// no failure ever reaches the caller.
func (h *Hub) Publish(event bookings.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("marshal event", slog.Any("error", err))
		}
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.ch <- payload:
		default:
			if h.logger != nil {
				h.logger.Warn("dropping slow subscriber", slog.String("event", event.Event))
			}
			h.remove(sub)
		}
	}
}

// Len reports the number of attached subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// remove must be called with the mutex held.
func (h *Hub) remove(sub *Subscription) {
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub.ch)
}

var _ bookings.Publisher = (*Hub)(nil)
