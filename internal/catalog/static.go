package catalog

import (
	"fmt"
	"os"

	"bistro/internal/models"

	"gopkg.in/yaml.v2"
)

// StaticMenu is the on-disk shape of the bundled menu.
type StaticMenu struct {
	Categories []models.Category               `yaml:"categories"`
	Items      map[string][]models.RawMenuItem `yaml:"items"`
}

// ParseStaticMenu decodes a static menu document and normalizes every item.
// The bucket key becomes the item's category when the item has none.
func ParseStaticMenu(data []byte) (Buckets, []models.Category, error) {
	var doc StaticMenu
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse static menu: %w", err)
	}

	buckets := make(Buckets, len(doc.Items))
	for label, raw := range doc.Items {
		items, err := models.NormalizeAll(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("static menu %q: %w", label, err)
		}
		for i := range items {
			if items[i].Category == "" {
				items[i].Category = label
			}
		}
		buckets[label] = items
	}
	return buckets, doc.Categories, nil
}

// LoadStaticMenu reads and parses the static menu file.
func LoadStaticMenu(path string) (Buckets, []models.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read static menu: %w", err)
	}
	return ParseStaticMenu(data)
}
