package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"bistro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMenu = `
categories:
  - name: Breakfast
    subtitle: Start your day right
  - name: Coffee
items:
  Breakfast:
    - id: 1
      name: Pancakes
      description: Fluffy pancakes with maple syrup
      price: "€5.99"
    - id: 2
      name: Omelette
      price: 6.5
  Coffee:
    - id: "1"
      name: Espresso
      price: "€2.00"
      category: Coffee
`

func TestParseStaticMenu(t *testing.T) {
	buckets, categories, err := ParseStaticMenu([]byte(sampleMenu))
	require.NoError(t, err)

	require.Len(t, categories, 2)
	assert.Equal(t, "Start your day right", categories[0].Subtitle)

	breakfast := LookupCategory(buckets, "Breakfast")
	require.Len(t, breakfast, 2)
	assert.Equal(t, "1", breakfast[0].ID)
	assert.Equal(t, int64(599), breakfast[0].PriceMinor)
	assert.Equal(t, "Breakfast", breakfast[0].Category)
	assert.Equal(t, int64(650), breakfast[1].PriceMinor)

	coffee := LookupCategory(buckets, "Coffee")
	require.Len(t, coffee, 1)
	assert.Equal(t, "1", coffee[0].ID)
	assert.NotEqual(t, breakfast[0].Key(), coffee[0].Key())
}

func TestParseStaticMenu_BadPrice(t *testing.T) {
	_, _, err := ParseStaticMenu([]byte("items:\n  Lunch:\n    - id: 1\n      name: Soup\n      price: cheap\n"))
	assert.ErrorIs(t, err, models.ErrInvalidPrice)
}

func TestLoadStaticMenu(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleMenu), 0o644))

	buckets, _, err := LoadStaticMenu(path)
	require.NoError(t, err)
	assert.Equal(t, 3, buckets.Len())

	_, _, err = LoadStaticMenu(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
