// Package catalog implements category browsing over the menu: filtering the
// live list fetched from the CMS and looking up the static pre-bucketed menu.
package catalog

import (
	"sort"
	"strings"

	"bistro/internal/models"
)

// Buckets maps a category label to its items, as in the static menu file.
type Buckets map[string][]models.MenuItem

// FilterByCategory returns the items whose category equals the label after
// trimming whitespace on both sides. Order is preserved and the input is not
// modified. An empty label or no match yields an empty slice.
func FilterByCategory(items []models.MenuItem, category string) []models.MenuItem {
	out := make([]models.MenuItem, 0)
	label := strings.TrimSpace(category)
	if label == "" {
		return out
	}
	for _, item := range items {
		if strings.TrimSpace(item.Category) == label {
			out = append(out, item)
		}
	}
	return out
}

// LookupCategory returns a copy of the bucket stored under the exact label.
func LookupCategory(buckets Buckets, category string) []models.MenuItem {
	items, ok := buckets[category]
	if !ok {
		return make([]models.MenuItem, 0)
	}
	out := make([]models.MenuItem, len(items))
	copy(out, items)
	return out
}

// GroupByCategory buckets items by their trimmed category. Items without a
// category are skipped.
func GroupByCategory(items []models.MenuItem) Buckets {
	buckets := make(Buckets)
	for _, item := range items {
		label := strings.TrimSpace(item.Category)
		if label == "" {
			continue
		}
		buckets[label] = append(buckets[label], item)
	}
	return buckets
}

// Categories returns the bucket labels in sorted order.
func (b Buckets) Categories() []string {
	out := make([]string, 0, len(b))
	for label := range b {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Len is the total number of items across buckets.
func (b Buckets) Len() int {
	n := 0
	for _, items := range b {
		n += len(items)
	}
	return n
}
