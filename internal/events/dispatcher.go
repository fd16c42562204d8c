package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aksi-clean/api/internal/domain"
)

// Subscriber consumes price-calculated events in-process.
type Subscriber interface {
	HandlePriceCalculated(ctx context.Context, event domain.PriceCalculatedEvent) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(ctx context.Context, event domain.PriceCalculatedEvent) error

// HandlePriceCalculated implements Subscriber.
func (f SubscriberFunc) HandlePriceCalculated(ctx context.Context, event domain.PriceCalculatedEvent) error {
	return f(ctx, event)
}

// Dispatcher fans events out to registered subscribers. Subscriber errors and
// panics are isolated per subscriber: one misbehaving consumer never prevents
// delivery to the others, and never reaches the publishing caller.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers []namedSubscriber
	logger      *zap.Logger
}

type namedSubscriber struct {
	name string
	sub  Subscriber
}

// NewDispatcher constructs an empty dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger}
}

// Subscribe registers a named subscriber.
func (d *Dispatcher) Subscribe(name string, sub Subscriber) {
	if sub == nil {
		return
	}
	d.mu.Lock()
	d.subscribers = append(d.subscribers, namedSubscriber{name: name, sub: sub})
	d.mu.Unlock()
}

// Publish delivers the event to every subscriber. It always returns nil: the
// snapshot has already been returned to the calculation caller, so failures
// are logged rather than propagated.
func (d *Dispatcher) Publish(ctx context.Context, event domain.PriceCalculatedEvent) error {
	d.mu.RLock()
	subscribers := make([]namedSubscriber, len(d.subscribers))
	copy(subscribers, d.subscribers)
	d.mu.RUnlock()

	for _, entry := range subscribers {
		d.deliver(ctx, entry, event)
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, entry namedSubscriber, event domain.PriceCalculatedEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("price event subscriber panicked",
				zap.String("subscriber", entry.name),
				zap.String("event_id", event.ID),
				zap.String("panic", fmt.Sprintf("%v", r)))
		}
	}()

	if err := entry.sub.HandlePriceCalculated(ctx, event); err != nil {
		d.logger.Warn("price event subscriber failed",
			zap.String("subscriber", entry.name),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}
