package domain

import "time"

// Tag is an entry in the shared tag vocabulary.
// Slug is the reconciliation key and never changes; Label keeps the casing
// the tag was first seen with.
type Tag struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameTag links a game to a tag. The (game, tag) pair is unique.
type GameTag struct {
	GameID    int64     `json:"game_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}
