// Package domain holds the records shared by ingestion, scoring, and prompting.
package domain

import "time"

// Game is a catalog entry keyed by its immutable external (catalog) identity.
type Game struct {
	ExternalID  int64      `json:"external_id"`
	Slug        string     `json:"slug,omitempty"` // Optional; unique when set
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Summary     string     `json:"summary,omitempty"`
	Storyline   string     `json:"storyline,omitempty"`
	TagCache    []string   `json:"tag_cache,omitempty"` // Catalog tag labels as received
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	Checksum    string     `json:"checksum"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FieldText returns the text a semantic field is embedded from.
func (g *Game) FieldText(f Field) string {
	switch f {
	case FieldTitle:
		return g.Title
	case FieldStoryline:
		return g.Storyline
	case FieldSummary:
		return g.Summary
	default:
		return ""
	}
}

// ReleasedAfter reports whether g was released strictly after other.
// A game without a release date is never newer than one with a date.
func (g *Game) ReleasedAfter(other *Game) bool {
	switch {
	case g.ReleaseDate == nil:
		return false
	case other.ReleaseDate == nil:
		return true
	default:
		return g.ReleaseDate.After(*other.ReleaseDate)
	}
}

// Favorite marks a game as one of the user's favorites.
// There is at most one favorite per game; re-favoriting replaces the notes.
type Favorite struct {
	GameID    int64     `json:"game_id"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// Game is populated by list queries.
	Game *Game `json:"game,omitempty"`
}

// Verdict is the external agent's judgment on one candidate.
type Verdict struct {
	Recommend bool   `json:"recommend"`
	Reason    string `json:"reason"`
}
