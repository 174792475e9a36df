package cart

import (
	"fmt"
	"math"

	"bistro/internal/domain"
	"bistro/internal/models"
)

// Increment returns a new sequence with the matching line's quantity raised
// by one, up to models.MaxQuantity.
func Increment(entries []models.CartEntry, key models.LineKey) []models.CartEntry {
	out := clone(entries)
	for i := range out {
		if out[i].Key() == key && out[i].Quantity < models.MaxQuantity {
			out[i].Quantity++
		}
	}
	return out
}

// Decrement lowers the matching line by one but never below 1.
func Decrement(entries []models.CartEntry, key models.LineKey) []models.CartEntry {
	out := clone(entries)
	for i := range out {
		if out[i].Key() == key && out[i].Quantity > 1 {
			out[i].Quantity--
		}
	}
	return out
}

// DecrementOrRemove lowers the matching line by one and drops it when it would reach zero.
func DecrementOrRemove(entries []models.CartEntry, key models.LineKey) []models.CartEntry {
	out := make([]models.CartEntry, 0, len(entries))
	for _, e := range entries {
		if e.Key() == key {
			if e.Quantity <= 1 {
				continue
			}
			e.Quantity--
		}
		out = append(out, e)
	}
	return out
}

// Remove drops the matching line.
func Remove(entries []models.CartEntry, key models.LineKey) []models.CartEntry {
	out := make([]models.CartEntry, 0, len(entries))
	for _, e := range entries {
		if e.Key() != key {
			out = append(out, e)
		}
	}
	return out
}

// ComputeTotal sums price times quantity in minor units. The sum saturates
// at math.MaxInt64 and never goes negative.
func ComputeTotal(entries []models.CartEntry) int64 {
	var total int64
	for _, e := range entries {
		if e.Quantity < 1 || e.Item.PriceMinor < 0 {
			continue
		}
		if e.Item.PriceMinor > 0 && int64(e.Quantity) > math.MaxInt64/e.Item.PriceMinor {
			return math.MaxInt64
		}
		sub := e.Subtotal()
		if total > math.MaxInt64-sub {
			return math.MaxInt64
		}
		total += sub
	}
	return total
}

// FormatTotal renders a total the way the cart screen shows it.
func FormatTotal(total int64) string {
	return models.FormatPrice(total)
}

// ValidateEntries rejects quantities outside 1..models.MaxQuantity, prices
// outside 0..models.MaxPriceMinor and repeated lines.
func ValidateEntries(entries []models.CartEntry) error {
	seen := make(map[models.LineKey]struct{}, len(entries))
	for _, e := range entries {
		if e.Quantity < 1 || e.Quantity > models.MaxQuantity {
			return fmt.Errorf("%s: %w", e.Item.Name, domain.ErrInvalidQuantity)
		}
		if e.Item.PriceMinor < 0 || e.Item.PriceMinor > models.MaxPriceMinor {
			return fmt.Errorf("%s: %w", e.Item.Name, models.ErrInvalidPrice)
		}
		if _, dup := seen[e.Key()]; dup {
			return fmt.Errorf("%s (%s): %w", e.Item.Name, e.Item.ID, domain.ErrDuplicateLine)
		}
		seen[e.Key()] = struct{}{}
	}
	return nil
}

func clone(entries []models.CartEntry) []models.CartEntry {
	out := make([]models.CartEntry, len(entries))
	copy(out, entries)
	return out
}
