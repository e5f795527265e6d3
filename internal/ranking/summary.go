package ranking

import (
	"time"

	"github.com/gamerec/gamerec/internal/similarity"
)

// GameRef identifies a game by external id and title.
type GameRef struct {
	ExternalID int64  `json:"external_id"`
	Title      string `json:"title"`
}

// Summary is the flat, serializable view of a ranked candidate.
type Summary struct {
	Rank        int                    `json:"rank"`
	ExternalID  int64                  `json:"external_id"`
	Title       string                 `json:"title"`
	ReleaseDate string                 `json:"release_date,omitempty"`
	Score       float64                `json:"score"`
	Matched     GameRef                `json:"matched_favorite"`
	Dominant    similarity.Signal      `json:"dominant_signal"`
	Components  []similarity.Component `json:"components"`
}

// Summarize flattens ranked, numbering entries from 1 in slice order.
func Summarize(ranked []*Ranked) []Summary {
	out := make([]Summary, len(ranked))
	for i, r := range ranked {
		g := r.Candidate.Game
		s := Summary{
			Rank:       i + 1,
			ExternalID: g.ExternalID,
			Title:      g.Title,
			Score:      r.Overall,
			Matched:    GameRef{ExternalID: r.Matched.ID(), Title: r.Matched.Game.Title},
			Dominant:   r.Dominant(),
			Components: r.Breakdown.Components,
		}
		if g.ReleaseDate != nil {
			s.ReleaseDate = g.ReleaseDate.Format(time.DateOnly)
		}
		out[i] = s
	}
	return out
}
