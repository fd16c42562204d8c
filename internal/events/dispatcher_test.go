package events

import (
	"context"
	"errors"
	"testing"

	"github.com/aksi-clean/api/internal/domain"
)

func TestDispatcherDeliversToAllSubscribers(t *testing.T) {
	dispatcher := NewDispatcher(nil)

	var first, second []string
	dispatcher.Subscribe("first", SubscriberFunc(func(_ context.Context, e domain.PriceCalculatedEvent) error {
		first = append(first, e.ID)
		return nil
	}))
	dispatcher.Subscribe("second", SubscriberFunc(func(_ context.Context, e domain.PriceCalculatedEvent) error {
		second = append(second, e.ID)
		return nil
	}))

	if err := dispatcher.Publish(context.Background(), domain.PriceCalculatedEvent{ID: "evt-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected delivery to both subscribers, got %d/%d", len(first), len(second))
	}
}

func TestDispatcherIsolatesFailingSubscriber(t *testing.T) {
	dispatcher := NewDispatcher(nil)

	delivered := 0
	dispatcher.Subscribe("broken", SubscriberFunc(func(context.Context, domain.PriceCalculatedEvent) error {
		return errors.New("boom")
	}))
	dispatcher.Subscribe("panicky", SubscriberFunc(func(context.Context, domain.PriceCalculatedEvent) error {
		panic("very boom")
	}))
	dispatcher.Subscribe("healthy", SubscriberFunc(func(context.Context, domain.PriceCalculatedEvent) error {
		delivered++
		return nil
	}))

	if err := dispatcher.Publish(context.Background(), domain.PriceCalculatedEvent{ID: "evt-2"}); err != nil {
		t.Fatalf("publish must not surface subscriber errors, got %v", err)
	}
	if delivered != 1 {
		t.Fatalf("healthy subscriber must still receive the event, got %d deliveries", delivered)
	}
}
