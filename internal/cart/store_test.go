package cart

import (
	"sync"
	"testing"

	"bistro/internal/events"
	"bistro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddToCart(t *testing.T) {
	t.Run("SameLineTwice", func(t *testing.T) {
		s := NewStore("s1", nil)
		s.AddToCart(pancakes)
		s.AddToCart(pancakes)

		entries := s.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, 2, entries[0].Quantity)
	})

	t.Run("SameIDDifferentName", func(t *testing.T) {
		s := NewStore("s1", nil)
		s.AddToCart(pancakes)
		s.AddToCart(sandwich)

		entries := s.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, 1, entries[0].Quantity)
		assert.Equal(t, 1, entries[1].Quantity)
		assert.Equal(t, "Pancakes", entries[0].Item.Name)
	})

	t.Run("Quantity", func(t *testing.T) {
		s := NewStore("s1", nil)
		s.AddToCartQuantity(latte, 3)
		s.AddToCartQuantity(latte, 0)

		assert.Equal(t, 1, s.Len())
		assert.Equal(t, 4, s.Quantity())
	})

	t.Run("CapsAtMaxQuantity", func(t *testing.T) {
		s := NewStore("s1", nil)
		s.AddToCartQuantity(latte, models.MaxQuantity-1)
		s.AddToCartQuantity(latte, 5)
		s.AddToCartQuantity(pancakes, 1<<40)

		entries := s.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, models.MaxQuantity, entries[0].Quantity)
		assert.Equal(t, models.MaxQuantity, entries[1].Quantity)
		assert.Positive(t, s.Total())
	})
}

func TestStore_Scenario(t *testing.T) {
	item, err := models.RawMenuItem{ID: "1", Name: "Pancakes", Price: mustPrice(t, "€5.99")}.Normalize()
	require.NoError(t, err)

	s := NewStore("s1", nil)
	assert.Equal(t, "€0.00", FormatTotal(s.Total()))

	s.AddToCart(item)
	assert.Equal(t, "€5.99", FormatTotal(s.Total()))

	s.AddToCart(item)
	assert.Equal(t, 2, s.Entries()[0].Quantity)
	assert.Equal(t, "€11.98", FormatTotal(s.Total()))

	assert.True(t, s.Checkout())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "€0.00", FormatTotal(s.Total()))
	assert.False(t, s.Checkout())
}

func TestStore_LineOperations(t *testing.T) {
	s := NewStore("s1", nil)
	s.AddToCart(pancakes)
	s.AddToCart(latte)

	s.Increment(pancakes.Key())
	assert.Equal(t, 2, s.Entries()[0].Quantity)

	s.Decrement(pancakes.Key())
	s.Decrement(pancakes.Key())
	assert.Equal(t, 1, s.Entries()[0].Quantity)

	s.DecrementOrRemove(pancakes.Key())
	assert.False(t, s.Has(pancakes.Key()))
	assert.True(t, s.Has(latte.Key()))

	s.Remove(latte.Key())
	assert.Equal(t, 0, s.Len())
}

func TestStore_UpdateCart(t *testing.T) {
	s := NewStore("s1", nil)
	s.AddToCart(pancakes)

	replacement := []models.CartEntry{{Item: latte, Quantity: 2}}
	s.UpdateCart(replacement)
	replacement[0].Quantity = 99

	assert.Equal(t, []models.CartEntry{{Item: latte, Quantity: 2}}, s.Entries())

	s.UpdateCart(nil)
	assert.Equal(t, 0, s.Len())
}

func TestStore_PublishesEvents(t *testing.T) {
	bus := events.NewEventBus()
	var got []string
	var last events.CartEventPayload
	bus.Subscribe(func(e *events.Event) error {
		got = append(got, e.Type)
		return e.Decode(&last)
	}, events.EventCartUpdated, events.EventCartCheckedOut)

	s := NewStore("session-42", bus)
	s.AddToCart(pancakes)
	s.AddToCart(latte)
	assert.Equal(t, int64(949), last.TotalMinor)

	s.Checkout()

	assert.Equal(t, []string{events.EventCartUpdated, events.EventCartUpdated, events.EventCartCheckedOut}, got)
	assert.Equal(t, "session-42", last.SessionID)
	assert.Equal(t, 2, last.Lines)
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore("s1", nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddToCart(pancakes)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, s.Len())
	assert.Equal(t, 50, s.Quantity())
}

func mustPrice(t *testing.T, raw string) models.FlexiblePrice {
	t.Helper()
	minor, err := models.ParsePrice(raw)
	require.NoError(t, err)
	return models.NewPrice(minor)
}
