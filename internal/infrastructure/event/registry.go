package event

import (
	"sync"
	"sync/atomic"

	"github.com/datahub/backend/internal/domain/shared"
)

// subscriptions maps event types to handlers. Publishing reads an immutable
// snapshot, so handlers may subscribe or unsubscribe while events are
// delivered.
type subscriptions struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[routes]
}

// routes is one immutable snapshot. The "" key holds handlers that receive
// every event.
type routes map[string][]shared.EventHandler

const anyEvent = ""

func newSubscriptions() *subscriptions {
	s := &subscriptions{}
	s.snapshot.Store(&routes{})
	return s
}

// add subscribes handler to eventTypes, or to every event when none is given
func (s *subscriptions) add(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{anyEvent}
	}
	s.update(func(next routes) {
		for _, t := range eventTypes {
			next[t] = append(next[t], handler)
		}
	})
}

// remove drops handler from every event type
func (s *subscriptions) remove(handler shared.EventHandler) {
	s.update(func(next routes) {
		for t, handlers := range next {
			kept := make([]shared.EventHandler, 0, len(handlers))
			for _, h := range handlers {
				if h != handler {
					kept = append(kept, h)
				}
			}
			if len(kept) == 0 {
				delete(next, t)
				continue
			}
			next[t] = kept
		}
	})
}

// lookup returns the handlers of eventType followed by the catch-all handlers
func (s *subscriptions) lookup(eventType string) []shared.EventHandler {
	r := *s.snapshot.Load()
	if eventType == anyEvent {
		return r[anyEvent]
	}
	handlers := make([]shared.EventHandler, 0, len(r[eventType])+len(r[anyEvent]))
	handlers = append(handlers, r[eventType]...)
	return append(handlers, r[anyEvent]...)
}

func (s *subscriptions) update(fn func(next routes)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := *s.snapshot.Load()
	next := make(routes, len(current))
	for t, handlers := range current {
		next[t] = append([]shared.EventHandler(nil), handlers...)
	}
	fn(next)
	s.snapshot.Store(&next)
}
