// Package favorites holds one session's favorite menu items.
package favorites

import (
	"sync"

	"bistro/internal/domain"
	"bistro/internal/events"
	"bistro/internal/models"
)

// Store is an ordered set of favorites keyed by item ID.
type Store struct {
	owner     string
	publisher domain.EventPublisher

	mu      sync.Mutex
	entries []models.FavoriteEntry
}

func NewStore(owner string, publisher domain.EventPublisher) *Store {
	return &Store{owner: owner, publisher: publisher}
}

// ToggleFavorite removes the item when present and appends it otherwise.
// It returns whether the item is a favorite afterwards.
func (s *Store) ToggleFavorite(item models.MenuItem) bool {
	s.mu.Lock()
	idx := s.indexLocked(item.ID)
	if idx >= 0 {
		s.entries = append(s.entries[:idx:idx], s.entries[idx+1:]...)
	} else {
		s.entries = append(s.entries, models.FavoriteEntry{Item: item})
	}
	favorite := idx < 0
	count := len(s.entries)
	s.mu.Unlock()

	s.publish(item.ID, favorite, count)
	return favorite
}

func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

func (s *Store) ClearFavorites() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	s.publish("", false, 0)
}

// Items returns the favorited items in the order they were added.
func (s *Store) Items() []models.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MenuItem, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Item)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) indexLocked(id string) int {
	for i, e := range s.entries {
		if e.Item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) publish(itemID string, favorite bool, count int) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.PublishJSON(events.EventFavoritesUpdated, events.FavoritesEventPayload{
		SessionID: s.owner,
		ItemID:    itemID,
		Favorite:  favorite,
		Count:     count,
	})
}
