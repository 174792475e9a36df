package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MenuItem is a menu record after normalization at the ingestion boundary.
// IDs are always strings and prices are always minor units.
type MenuItem struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description"`
	PriceMinor  int64     `json:"price_minor" yaml:"price_minor"`
	ImageURL    string    `json:"image_url,omitempty" yaml:"image_url"`
	Category    string    `json:"category,omitempty" yaml:"category"`
	CreatedAt   time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// DisplayPrice renders the price the way the menu shows it.
func (m MenuItem) DisplayPrice() string {
	return FormatPrice(m.PriceMinor)
}

// Key returns the cart line identity of the item.
func (m MenuItem) Key() LineKey {
	return LineKey{ID: m.ID, Name: m.Name}
}

var ErrInvalidID = errors.New("invalid item id")

// FlexibleID accepts a JSON string or number and keeps it as a string.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		*id = FlexibleID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, string(data))
	}
	if i, err := n.Int64(); err == nil {
		*id = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = FlexibleID(n.String())
	return nil
}

func (id *FlexibleID) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*id = ""
	case string:
		*id = FlexibleID(strings.TrimSpace(v))
	case int:
		*id = FlexibleID(strconv.Itoa(v))
	case int64:
		*id = FlexibleID(strconv.FormatInt(v, 10))
	case float64:
		*id = FlexibleID(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("%w: %v", ErrInvalidID, v)
	}
	return nil
}

// RawMenuItem is the shape accepted from outside: the CMS, the static menu
// file and UI requests. Call Normalize before handing it to a store.
type RawMenuItem struct {
	ID          FlexibleID    `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Price       FlexiblePrice `json:"price" yaml:"price"`
	Image       string        `json:"image,omitempty" yaml:"image"`
	ImageURL    string        `json:"image_url,omitempty" yaml:"image_url"`
	Category    string        `json:"category,omitempty" yaml:"category"`
	CreatedAt   time.Time     `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt   time.Time     `json:"updatedAt,omitempty" yaml:"-"`
}

// Normalize converts the raw record into a MenuItem.
func (r RawMenuItem) Normalize() (MenuItem, error) {
	if r.ID == "" {
		return MenuItem{}, fmt.Errorf("%w: empty id for %q", ErrInvalidID, r.Name)
	}
	if !r.Price.Valid {
		return MenuItem{}, fmt.Errorf("%w: item %s has no price", ErrInvalidPrice, r.ID)
	}

	image := r.ImageURL
	if image == "" {
		image = r.Image
	}

	return MenuItem{
		ID:          string(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		PriceMinor:  r.Price.Minor,
		ImageURL:    image,
		Category:    r.Category,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// NormalizeAll normalizes a batch, stopping at the first bad record.
func NormalizeAll(raw []RawMenuItem) ([]MenuItem, error) {
	items := make([]MenuItem, 0, len(raw))
	for _, r := range raw {
		item, err := r.Normalize()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Category is a menu tile on the browse screen.
type Category struct {
	Name     string `json:"name" yaml:"name"`
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle"`
	ImageURL string `json:"image_url,omitempty" yaml:"image_url"`
}
