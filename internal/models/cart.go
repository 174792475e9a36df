package models

// LineKey identifies a cart line. Two entries are the same line only when
// both the item ID and the item name match.
type LineKey struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CartEntry is one line of the cart.
type CartEntry struct {
	Item     MenuItem `json:"item"`
	Quantity int      `json:"quantity"`
}

// Key returns the line identity of the entry.
func (e CartEntry) Key() LineKey {
	return e.Item.Key()
}

// Subtotal is price times quantity in minor units. Callers keep the price
// within MaxPriceMinor and the quantity within MaxQuantity.
func (e CartEntry) Subtotal() int64 {
	return e.Item.PriceMinor * int64(e.Quantity)
}

// FavoriteEntry is a favorited item, keyed by item ID only.
type FavoriteEntry struct {
	Item MenuItem `json:"item"`
}
