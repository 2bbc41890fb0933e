// Package event dispatches record change events to in-process subscribers
package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/datahub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers events synchronously on the publishing goroutine.
// Events published after Stop are dropped.
type InMemoryEventBus struct {
	subs    *subscriptions
	logger  *zap.Logger
	stopped atomic.Bool
}

// NewInMemoryEventBus creates an InMemoryEventBus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		subs:   newSubscriptions(),
		logger: logger,
	}
}

// Publish hands every event to its handlers. A failing or panicking handler
// does not stop delivery to the others; failures are returned joined.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		for _, e := range events {
			b.logger.Warn("Event dropped, bus stopped",
				zap.String("event_type", e.EventType()),
				zap.String("aggregate_id", e.AggregateID().String()),
			)
		}
		return nil
	}

	var errs []error
	for _, e := range events {
		for _, h := range b.subs.lookup(e.EventType()) {
			if err := deliver(ctx, h, e); err != nil {
				b.logger.Error("Event handler failed",
					zap.String("event_type", e.EventType()),
					zap.String("event_id", e.EventID().String()),
					zap.String("aggregate_type", e.AggregateType()),
					zap.String("aggregate_id", e.AggregateID().String()),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers handler for eventTypes, or for the types it declares
// when none are given
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.subs.add(handler, eventTypes...)
	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.subs.remove(handler)
}

// Start (re)opens the bus for publishing
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("Event bus started")
	return nil
}

// Stop makes later Publish calls drop their events
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.stopped.Store(true)
	b.logger.Info("Event bus stopped")
	return nil
}

func deliver(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
