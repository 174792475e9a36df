package models

import "time"

type Review struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	MenuID    string    `json:"menu_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ReviewInput is what a user submits from the item screen. Rating comes from
// a star widget and may be fractional.
type ReviewInput struct {
	MenuID string  `json:"menu_id"`
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
}
