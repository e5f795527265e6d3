// Package ranking folds per-favorite scores into one explained entry per
// candidate and orders candidates deterministically.
package ranking

import (
	"cmp"
	"slices"

	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/similarity"
)

// Ranked is one candidate with its best match among the favorites.
type Ranked struct {
	Candidate *similarity.Profile
	// Overall is the best composite score across all favorites.
	Overall   float64
	Matched   *similarity.Profile
	Breakdown similarity.Breakdown
}

// Dominant returns the signal that contributed most to the best match.
func (r *Ranked) Dominant() similarity.Signal {
	return r.Breakdown.Dominant()
}

// Aggregate picks the favorite with the highest composite score. When two
// favorites tie within similarity.Epsilon, the lower external id wins.
// Overall is always the maximum composite, even when a tie picked a favorite
// scoring slightly below it.
func Aggregate(candidate *similarity.Profile, scores []similarity.Score) (*Ranked, error) {
	if len(scores) == 0 {
		return nil, domainerrors.EmptyInput("no favorite scores to aggregate")
	}

	best := scores[0]
	top := best.Composite
	for _, s := range scores[1:] {
		top = max(top, s.Composite)
		switch {
		case s.Composite > best.Composite+similarity.Epsilon:
			best = s
		case s.Composite >= best.Composite-similarity.Epsilon && s.Favorite.ID() < best.Favorite.ID():
			best = s
		}
	}

	return &Ranked{
		Candidate: candidate,
		Overall:   top,
		Matched:   best.Favorite,
		Breakdown: best.Breakdown,
	}, nil
}

// Compare orders a before b when it scores higher. Scores within
// similarity.Epsilon fall back to the newer release date, then to the lower
// external id.
func Compare(a, b *Ranked) int {
	if diff := a.Overall - b.Overall; diff > similarity.Epsilon {
		return -1
	} else if diff < -similarity.Epsilon {
		return 1
	}

	ga, gb := a.Candidate.Game, b.Candidate.Game
	switch {
	case ga.ReleasedAfter(gb):
		return -1
	case gb.ReleasedAfter(ga):
		return 1
	}
	return cmp.Compare(ga.ExternalID, gb.ExternalID)
}

// Sort orders ranked in place by Compare.
func Sort(ranked []*Ranked) {
	slices.SortStableFunc(ranked, Compare)
}

// Truncate returns the first n entries, or all of them when n <= 0.
// Order is preserved.
func Truncate(ranked []*Ranked, n int) []*Ranked {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n:n]
}

// Rank scores every candidate against favorites and returns them sorted.
func Rank(engine *similarity.Engine, candidates, favorites []*similarity.Profile) ([]*Ranked, error) {
	if len(favorites) == 0 {
		return nil, domainerrors.EmptyInput("no favorites to rank against")
	}

	out := make([]*Ranked, 0, len(candidates))
	for _, c := range candidates {
		r, err := RankOne(engine, c, favorites)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	Sort(out)
	return out, nil
}

// RankOne scores and aggregates a single candidate.
func RankOne(engine *similarity.Engine, candidate *similarity.Profile, favorites []*similarity.Profile) (*Ranked, error) {
	scores, err := engine.Score(candidate, favorites)
	if err != nil {
		return nil, err
	}
	return Aggregate(candidate, scores)
}

// ExcludeFavorites drops candidates whose game is itself a favorite.
func ExcludeFavorites(candidates []*similarity.Profile, favorites []*domain.Favorite) []*similarity.Profile {
	fav := make(map[int64]bool, len(favorites))
	for _, f := range favorites {
		fav[f.GameID] = true
	}
	out := make([]*similarity.Profile, 0, len(candidates))
	for _, c := range candidates {
		if !fav[c.ID()] {
			out = append(out, c)
		}
	}
	return out
}
