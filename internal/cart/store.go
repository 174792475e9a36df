// Package cart holds one session's shopping cart.
package cart

import (
	"sync"

	"bistro/internal/domain"
	"bistro/internal/events"
	"bistro/internal/models"
)

// Store is an ordered cart. Lines are identified by item ID and name together.
type Store struct {
	owner     string
	publisher domain.EventPublisher

	mu      sync.Mutex
	entries []models.CartEntry
}

// NewStore creates an empty cart. owner labels published events.
func NewStore(owner string, publisher domain.EventPublisher) *Store {
	return &Store{owner: owner, publisher: publisher}
}

// AddToCart bumps an existing line or appends a new one with quantity 1.
func (s *Store) AddToCart(item models.MenuItem) {
	s.AddToCartQuantity(item, 1)
}

// AddToCartQuantity adds qty units of item in one step. qty below 1 counts
// as 1 and a line never grows past models.MaxQuantity.
func (s *Store) AddToCartQuantity(item models.MenuItem, qty int) {
	if qty < 1 {
		qty = 1
	}
	if qty > models.MaxQuantity {
		qty = models.MaxQuantity
	}
	s.mu.Lock()
	found := false
	for i := range s.entries {
		if s.entries[i].Key() == item.Key() {
			s.entries[i].Quantity = min(s.entries[i].Quantity+qty, models.MaxQuantity)
			found = true
			break
		}
	}
	if !found {
		s.entries = append(s.entries, models.CartEntry{Item: item, Quantity: qty})
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(events.EventCartUpdated, snapshot)
}

// UpdateCart replaces the whole cart. No validation happens here; see ValidateEntries.
func (s *Store) UpdateCart(entries []models.CartEntry) {
	s.mu.Lock()
	s.entries = clone(entries)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(events.EventCartUpdated, snapshot)
}

func (s *Store) Increment(key models.LineKey) {
	s.apply(Increment, key)
}

func (s *Store) Decrement(key models.LineKey) {
	s.apply(Decrement, key)
}

func (s *Store) DecrementOrRemove(key models.LineKey) {
	s.apply(DecrementOrRemove, key)
}

func (s *Store) Remove(key models.LineKey) {
	s.apply(Remove, key)
}

func (s *Store) apply(fn func([]models.CartEntry, models.LineKey) []models.CartEntry, key models.LineKey) {
	s.mu.Lock()
	s.entries = fn(s.entries, key)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(events.EventCartUpdated, snapshot)
}

// Checkout empties a non-empty cart. It reports false when there was nothing to check out.
func (s *Store) Checkout() bool {
	s.mu.Lock()
	if len(s.entries) == 0 {
		s.mu.Unlock()
		return false
	}
	snapshot := s.snapshotLocked()
	s.entries = nil
	s.mu.Unlock()

	s.publish(events.EventCartCheckedOut, snapshot)
	return true
}

// Entries returns a copy of the lines in insertion order.
func (s *Store) Entries() []models.CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.entries)
}

// Has reports whether a line with the key exists.
func (s *Store) Has(key models.LineKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Key() == key {
			return true
		}
	}
	return false
}

// Len is the number of lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Quantity is the number of units across all lines.
func (s *Store) Quantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		n += e.Quantity
	}
	return n
}

// Total is ComputeTotal over the current lines.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeTotal(s.entries)
}

func (s *Store) snapshotLocked() events.CartEventPayload {
	p := events.CartEventPayload{SessionID: s.owner, Lines: len(s.entries)}
	for _, e := range s.entries {
		p.Quantity += e.Quantity
	}
	p.TotalMinor = ComputeTotal(s.entries)
	return p
}

func (s *Store) publish(eventType string, payload events.CartEventPayload) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.PublishJSON(eventType, payload)
}
