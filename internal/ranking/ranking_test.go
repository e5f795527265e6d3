package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/similarity"
)

func game(id int64, title string, released string) *domain.Game {
	g := &domain.Game{ExternalID: id, Title: title}
	if released != "" {
		t, _ := time.Parse(time.DateOnly, released)
		g.ReleaseDate = &t
	}
	return g
}

func prof(id int64, released string, tags ...string) *similarity.Profile {
	return similarity.NewProfile(game(id, "", released), tags, nil)
}

func ranked(id int64, overall float64, released string) *Ranked {
	return &Ranked{Candidate: prof(id, released), Overall: overall}
}

func ids(rs []*Ranked) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r.Candidate.ID()
	}
	return out
}

func TestAggregate_BestMatch(t *testing.T) {
	cand := prof(100, "")
	f1, f2 := prof(1, ""), prof(2, "")

	r, err := Aggregate(cand, []similarity.Score{
		{Favorite: f2, Composite: 0.2},
		{Favorite: f1, Composite: 0.9},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.9, r.Overall, 1e-12)
	assert.Same(t, f1, r.Matched)
}

func TestAggregate_TieGoesToLowerFavoriteID(t *testing.T) {
	cand := prof(100, "")
	f7, f3 := prof(7, ""), prof(3, "")

	r, err := Aggregate(cand, []similarity.Score{
		{Favorite: f7, Composite: 0.5},
		{Favorite: f3, Composite: 0.5 + 1e-12},
	})
	require.NoError(t, err)
	assert.Same(t, f3, r.Matched)
	assert.Equal(t, 0.5+1e-12, r.Overall)

	// The lower id wins the tie, but Overall keeps the higher score.
	r, err = Aggregate(cand, []similarity.Score{
		{Favorite: f3, Composite: 0.5},
		{Favorite: f7, Composite: 0.5 + 1e-12},
	})
	require.NoError(t, err)
	assert.Same(t, f3, r.Matched)
	assert.Equal(t, 0.5+1e-12, r.Overall)
}

func TestAggregate_Empty(t *testing.T) {
	_, err := Aggregate(prof(1, ""), nil)
	assert.ErrorIs(t, err, domainerrors.ErrEmptyInput)
}

func TestSort_TotalOrder(t *testing.T) {
	rs := []*Ranked{
		ranked(5, 0.5, "2024-01-01"),
		ranked(4, 0.8, ""),
		ranked(3, 0.5+1e-12, "2025-06-01"), // ties with 5 within epsilon, newer
		ranked(2, 0.5, ""),                 // undated sorts after dated ties
		ranked(1, 0.5, ""),
		ranked(6, 0.5, "2025-06-01"),
	}
	Sort(rs)

	assert.Equal(t, []int64{4, 3, 6, 5, 1, 2}, ids(rs))
}

func TestSort_IndependentOfInputOrder(t *testing.T) {
	build := func() []*Ranked {
		return []*Ranked{
			ranked(10, 0.3, "2020-01-01"),
			ranked(11, 0.3, "2020-01-01"),
			ranked(12, 0.9, ""),
			ranked(13, 0.3, "2021-01-01"),
		}
	}
	a := build()
	b := build()
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	Sort(a)
	Sort(b)
	assert.Equal(t, ids(a), ids(b))
	assert.Equal(t, []int64{12, 13, 10, 11}, ids(a))
}

func TestTruncate(t *testing.T) {
	rs := []*Ranked{ranked(1, 0.9, ""), ranked(2, 0.8, ""), ranked(3, 0.7, "")}

	assert.Equal(t, []int64{1, 2}, ids(Truncate(rs, 2)))
	assert.Equal(t, []int64{1, 2, 3}, ids(Truncate(rs, 0)))
	assert.Equal(t, []int64{1, 2, 3}, ids(Truncate(rs, 10)))

	// Appending to a truncated slice must not clobber the original.
	head := Truncate(rs, 1)
	_ = append(head, ranked(99, 0, ""))
	assert.Equal(t, int64(2), rs[1].Candidate.ID())
}

func TestRank_EndToEnd(t *testing.T) {
	engine, err := similarity.NewEngine(similarity.Weights{Tag: 1})
	require.NoError(t, err)

	favorites := []*similarity.Profile{
		prof(1, "", "roguelike", "space"),
		prof(2, "", "farming", "cozy"),
	}
	candidates := []*similarity.Profile{
		prof(10, "", "cozy"),              // 0.5 vs favorite 2
		prof(11, "", "roguelike", "space"), // 1.0 vs favorite 1
		prof(12, "", "horror"),            // 0
	}

	got, err := Rank(engine, candidates, favorites)
	require.NoError(t, err)

	assert.Equal(t, []int64{11, 10, 12}, ids(got))
	assert.Equal(t, int64(1), got[0].Matched.ID())
	assert.Equal(t, int64(2), got[1].Matched.ID())
	assert.Equal(t, similarity.SignalTag, got[0].Dominant())

	_, err = Rank(engine, candidates, nil)
	assert.ErrorIs(t, err, domainerrors.ErrEmptyInput)
}

func TestExcludeFavorites(t *testing.T) {
	candidates := []*similarity.Profile{prof(1, ""), prof(2, ""), prof(3, "")}
	got := ExcludeFavorites(candidates, []*domain.Favorite{{GameID: 2}})

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID())
	assert.Equal(t, int64(3), got[1].ID())
}
