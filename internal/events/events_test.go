package events

import (
	"testing"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(func(event *Event) error {
		received = event
		callCount++
		return nil
	}, EventCartUpdated)

	err := bus.PublishJSON(EventCartUpdated, CartEventPayload{SessionID: "s1", Lines: 2, Quantity: 3, TotalMinor: 1797})
	if err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}

	if received.Type != EventCartUpdated {
		t.Errorf("expected type %s, got %s", EventCartUpdated, received.Type)
	}

	var decoded CartEventPayload
	if err := received.Decode(&decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if decoded.TotalMinor != 1797 || decoded.Quantity != 3 {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestEventBusMultipleTypes(t *testing.T) {
	bus := NewEventBus()
	var count int

	bus.Subscribe(func(_ *Event) error { count++; return nil }, StoreEventTypes...)

	bus.Publish(&Event{Type: EventCartUpdated})
	bus.Publish(&Event{Type: EventFavoritesUpdated})
	bus.Publish(&Event{Type: EventMenuRefreshed})

	if count != 2 {
		t.Errorf("expected 2 calls, got %d", count)
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Should not panic
	bus.Publish(&Event{Type: "unknown"})
	if err := bus.PublishJSON("unknown", nil); err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON(EventCartUpdated, nil); err != nil {
		t.Errorf("nil bus should be a no-op, got %v", err)
	}
}

func TestPublishSetsCreatedAt(t *testing.T) {
	bus := NewEventBus()
	event := &Event{Type: EventMenuRefreshed}
	bus.Publish(event)
	if event.CreatedAt.IsZero() {
		t.Errorf("expected CreatedAt to be set")
	}
}
