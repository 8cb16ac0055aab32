// Package models defines the domain types for Reviewdeck.
package models

import "time"

// Review represents one reviewed item.
//
// The JSON field names match the historical stored shape so that an existing
// collection blob round-trips without migration.
type Review struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rating    float64   `json:"rating"`
	Category  string    `json:"category"`
	Notes     string    `json:"notes"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewPatch is a partial update to a Review. Nil fields are left untouched.
// ID and CreatedAt are deliberately absent: they are immutable after creation.
type ReviewPatch struct {
	Name     *string  `json:"name,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	Category *string  `json:"category,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	Favorite *bool    `json:"favorite,omitempty"`
}

// CategoryCount is one row of the category aggregation.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
