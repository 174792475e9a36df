package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bistro/internal/domain"
	"bistro/internal/events"
	"bistro/internal/models"

	"github.com/rs/zerolog"
)

// Catalog keeps the last menu fetched from the CMS together with the static
// buckets and the category tiles.
type Catalog struct {
	source     domain.MenuSource
	publisher  domain.EventPublisher
	logger     *zerolog.Logger
	static     Buckets
	categories []models.Category

	mu          sync.RWMutex
	items       []models.MenuItem
	itemsMap    map[string]models.MenuItem
	refreshedAt time.Time
}

func NewCatalog(source domain.MenuSource, static Buckets, categories []models.Category, publisher domain.EventPublisher, logger *zerolog.Logger) *Catalog {
	if static == nil {
		static = make(Buckets)
	}
	return &Catalog{
		source:     source,
		publisher:  publisher,
		logger:     logger,
		static:     static,
		categories: categories,
		itemsMap:   make(map[string]models.MenuItem),
	}
}

// Refresh replaces the cached list with a fresh fetch. On error the previous
// list is kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	items, err := c.source.ListMenuItems(ctx)
	if err != nil {
		return fmt.Errorf("refresh menu: %w", err)
	}

	itemsMap := make(map[string]models.MenuItem, len(items))
	for _, item := range items {
		itemsMap[item.ID] = item
	}

	c.mu.Lock()
	c.items = items
	c.itemsMap = itemsMap
	c.refreshedAt = time.Now()
	c.mu.Unlock()

	c.logger.Debug().Int("items", len(items)).Msg("menu refreshed")
	if c.publisher != nil {
		_ = c.publisher.PublishJSON(events.EventMenuRefreshed, events.MenuEventPayload{Items: len(items)})
	}
	return nil
}

// Items returns a copy of the last fetched list.
func (c *Catalog) Items() []models.MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.MenuItem, len(c.items))
	copy(out, c.items)
	return out
}

// Filter runs FilterByCategory over the last fetched list.
func (c *Catalog) Filter(category string) []models.MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FilterByCategory(c.items, category)
}

// Lookup runs LookupCategory over the static buckets.
func (c *Catalog) Lookup(category string) []models.MenuItem {
	return LookupCategory(c.static, category)
}

// ItemByID finds an item in the live list, then in the static buckets.
func (c *Catalog) ItemByID(id string) (models.MenuItem, error) {
	c.mu.RLock()
	item, ok := c.itemsMap[id]
	c.mu.RUnlock()
	if ok {
		return item, nil
	}
	for _, label := range c.static.Categories() {
		for _, item := range c.static[label] {
			if item.ID == id {
				return item, nil
			}
		}
	}
	return models.MenuItem{}, fmt.Errorf("menu item %s: %w", id, domain.ErrNotFound)
}

// Categories returns the category tiles.
func (c *Catalog) Categories() []models.Category {
	out := make([]models.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// RefreshedAt reports when the live list was last replaced.
func (c *Catalog) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}
