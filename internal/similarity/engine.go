// Package similarity scores a candidate game against favorite games by
// blending tag overlap with per-field embedding similarity.
package similarity

import (
	"math"

	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
)

// Epsilon is the tolerance under which two scores are considered equal.
const Epsilon = 1e-9

// Profile is a game together with everything the engine compares.
type Profile struct {
	Game *domain.Game
	// Tags are tag slugs.
	Tags       []string
	Embeddings map[domain.Field]*domain.Embedding
}

// NewProfile builds a profile from a game, its tag slugs, and its embeddings.
func NewProfile(g *domain.Game, tagSlugs []string, embeddings []*domain.Embedding) *Profile {
	p := &Profile{
		Game:       g,
		Tags:       tagSlugs,
		Embeddings: make(map[domain.Field]*domain.Embedding, len(embeddings)),
	}
	for _, e := range embeddings {
		p.Embeddings[e.Field] = e
	}
	return p
}

// ID returns the external id of the profiled game.
func (p *Profile) ID() int64 { return p.Game.ExternalID }

// Component is one signal's share of a composite score.
type Component struct {
	Signal Signal `json:"signal"`
	// Available is false when a field is missing on either side.
	Available bool `json:"available"`
	// Score is the raw similarity: Jaccard for tags, cosine for fields.
	Score float64 `json:"score"`
	// Weight is the renormalized weight, 0 when unavailable.
	Weight float64 `json:"weight"`
	// Contribution is Weight times the score clamped to [0, 1].
	Contribution float64 `json:"contribution"`
}

// Breakdown holds the components of a composite score in Signals order.
type Breakdown struct {
	Components []Component `json:"components"`
}

// Get returns the component for s.
func (b Breakdown) Get(s Signal) (Component, bool) {
	for _, c := range b.Components {
		if c.Signal == s {
			return c, true
		}
	}
	return Component{}, false
}

// Dominant returns the available signal with the largest contribution.
// Ties within Epsilon go to the earlier signal in Signals order.
func (b Breakdown) Dominant() Signal {
	best := SignalTag
	bestVal := math.Inf(-1)
	for _, c := range b.Components {
		if !c.Available {
			continue
		}
		if c.Contribution > bestVal+Epsilon {
			best, bestVal = c.Signal, c.Contribution
		}
	}
	return best
}

// Score is a candidate's similarity to one favorite.
type Score struct {
	Favorite  *Profile  `json:"-"`
	Composite float64   `json:"composite"`
	Breakdown Breakdown `json:"breakdown"`
}

// Engine computes composite scores with a fixed weight map.
type Engine struct {
	weights Weights
}

// NewEngine creates an engine after validating w.
func NewEngine(w Weights) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, domainerrors.Validationf("invalid similarity weights: %v", err)
	}
	return &Engine{weights: w}, nil
}

// Weights returns the configured weights.
func (e *Engine) Weights() Weights { return e.weights }

// Score compares candidate with every favorite, in favorites order.
func (e *Engine) Score(candidate *Profile, favorites []*Profile) ([]Score, error) {
	if len(favorites) == 0 {
		return nil, domainerrors.EmptyInput("no favorites to compare against")
	}

	scores := make([]Score, len(favorites))
	for i, fav := range favorites {
		s, err := e.Compare(candidate, fav)
		if err != nil {
			return nil, err
		}
		scores[i] = s
	}
	return scores, nil
}

// Compare computes the composite score of candidate against one favorite.
// The composite is the weighted mean of available signals, so it lies in
// [0, 1] whatever fields are missing. Negative cosines count as 0 toward it.
func (e *Engine) Compare(candidate, favorite *Profile) (Score, error) {
	comps := make([]Component, 0, len(Signals))
	comps = append(comps, Component{
		Signal:    SignalTag,
		Available: true,
		Score:     Jaccard(candidate.Tags, favorite.Tags),
	})

	for _, f := range domain.Fields {
		c := Component{Signal: SignalForField(f)}
		a, b := candidate.Embeddings[f], favorite.Embeddings[f]
		if a != nil && b != nil {
			sim, err := fieldSimilarity(f, a, b)
			if err != nil {
				return Score{}, err
			}
			c.Available = true
			c.Score = sim
		}
		comps = append(comps, c)
	}

	var total float64
	for _, c := range comps {
		if c.Available {
			total += e.weights.For(c.Signal)
		}
	}

	var composite float64
	if total > 0 {
		for i := range comps {
			c := &comps[i]
			if !c.Available {
				continue
			}
			c.Weight = e.weights.For(c.Signal) / total
			c.Contribution = c.Weight * clamp01(c.Score)
			composite += c.Contribution
		}
	}

	return Score{
		Favorite:  favorite,
		Composite: clamp01(composite),
		Breakdown: Breakdown{Components: comps},
	}, nil
}

func fieldSimilarity(f domain.Field, a, b *domain.Embedding) (float64, error) {
	if a.Dimension != b.Dimension {
		return 0, domainerrors.DimensionMismatchf("field %s: game %d has dimension %d, game %d has %d",
			f, a.GameID, a.Dimension, b.GameID, b.Dimension)
	}
	if a.Dimension != len(a.Vector) || b.Dimension != len(b.Vector) {
		return 0, domainerrors.DimensionMismatchf("field %s: declared dimension %d does not match vector length",
			f, a.Dimension)
	}
	return Cosine(a.Vector, b.Vector)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
