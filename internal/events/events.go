package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventCartUpdated      = "cart_updated"
	EventCartCheckedOut   = "cart_checked_out"
	EventFavoritesUpdated = "favorites_updated"
	EventMenuRefreshed    = "menu_refreshed"
	EventMenuItemChanged  = "menu_item_changed"
	EventReviewCreated    = "review_created"
	EventSessionClosed    = "session_closed"
)

// StoreEventTypes lists the events emitted by per-session stores.
var StoreEventTypes = []string{
	EventCartUpdated,
	EventCartCheckedOut,
	EventFavoritesUpdated,
}

// CartEventPayload is a snapshot of a cart after a change.
type CartEventPayload struct {
	SessionID  string `json:"session_id"`
	Lines      int    `json:"lines"`
	Quantity   int    `json:"quantity"`
	TotalMinor int64  `json:"total_minor"`
}

// FavoritesEventPayload is emitted after a toggle or clear.
type FavoritesEventPayload struct {
	SessionID string `json:"session_id"`
	ItemID    string `json:"item_id,omitempty"`
	Favorite  bool   `json:"favorite"`
	Count     int    `json:"count"`
}

// MenuEventPayload describes a catalog refresh or a manager edit.
type MenuEventPayload struct {
	ItemID string `json:"item_id,omitempty"`
	Action string `json:"action,omitempty"`
	Items  int    `json:"items"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for each of the given event types.
func (b *EventBus) Subscribe(handler EventHandler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.subscribers[t] = append(b.subscribers[t], handler)
	}
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
