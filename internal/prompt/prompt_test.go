package prompt

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/ranking"
	"github.com/gamerec/gamerec/internal/similarity"
)

func fixture(t *testing.T) ([]*ranking.Ranked, []Favorite) {
	t.Helper()

	release := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	v1 := []float32{0.12, 0.98, -0.33}

	novaDrift := similarity.NewProfile(
		&domain.Game{ExternalID: 1942, Title: "Nova Drift", Summary: "Build your ship\nfrom the wreckage."},
		[]string{"roguelike", "space", "arcade"},
		[]*domain.Embedding{{GameID: 1942, Field: domain.FieldTitle, Vector: v1, Dimension: 3}},
	)
	stardew := similarity.NewProfile(
		&domain.Game{ExternalID: 17000, Title: "Stardew Valley", Description: "Farm life."},
		[]string{"farming", "cozy"}, nil,
	)
	favorites := []Favorite{
		{Profile: stardew},
		{Profile: novaDrift, Notes: "  loved the   builds "},
	}

	sequel := similarity.NewProfile(
		&domain.Game{ExternalID: 2001, Title: "Nova Drift 2", ReleaseDate: &release, Summary: "More drifting."},
		[]string{"roguelike", "space"},
		[]*domain.Embedding{{GameID: 2001, Field: domain.FieldTitle, Vector: v1, Dimension: 3}},
	)
	farm := similarity.NewProfile(
		&domain.Game{ExternalID: 2002, Title: "Harvest Moon X"},
		[]string{"farming"}, nil,
	)
	horror := similarity.NewProfile(
		&domain.Game{ExternalID: 2003, Title: "Dread"},
		[]string{"horror"}, nil,
	)

	engine, err := similarity.NewEngine(similarity.DefaultWeights())
	require.NoError(t, err)
	ranked, err := ranking.Rank(engine,
		[]*similarity.Profile{horror, farm, sequel},
		[]*similarity.Profile{novaDrift, stardew})
	require.NoError(t, err)
	return ranked, favorites
}

func TestBuild_Deterministic(t *testing.T) {
	ranked, favorites := fixture(t)
	b := NewBuilder(Options{})

	first, err := b.Build(ranked, favorites)
	require.NoError(t, err)
	for range 20 {
		again, err := b.Build(ranked, favorites)
		require.NoError(t, err)
		assert.Equal(t, first.Text, again.Text)
	}
}

func TestBuild_Content(t *testing.T) {
	ranked, favorites := fixture(t)

	p, err := NewBuilder(Options{}).Build(ranked, favorites)
	require.NoError(t, err)

	require.Len(t, p.Payload.Candidates, 3)
	top := p.Payload.Candidates[0]
	assert.Equal(t, int64(2001), top.ExternalID)
	assert.Equal(t, "Nova Drift", top.Matched.Title)
	assert.Equal(t, 0.778, top.Score)
	assert.Equal(t, similarity.SignalTag, top.Dominant)
	assert.Equal(t, "shares tags roguelike, space", top.Gloss)
	assert.Equal(t, "2026-10-01", top.ReleaseDate)

	text := p.Text
	assert.Contains(t, text, "1. Nova Drift 2 (id 2001, released 2026-10-01)\n")
	assert.Contains(t, text, "   Best match: Nova Drift (id 1942)\n")
	assert.Contains(t, text, "   Score: 0.778\n")
	assert.Contains(t, text, "   Signals: tag=0.667 title=1.000 storyline=n/a summary=n/a\n")
	assert.Contains(t, text, batchSchema)

	// Favorites are listed by id with notes and single-lined text.
	assert.Less(t, strings.Index(text, "- Nova Drift (id 1942)"), strings.Index(text, "- Stardew Valley (id 17000)"))
	assert.Contains(t, text, "- Nova Drift (id 1942) [arcade, roguelike, space]\n  Notes: loved the builds\n  About: Build your ship from the wreckage.\n")
}

func TestBuild_TruncationKeepsOrder(t *testing.T) {
	ranked, favorites := fixture(t)
	full, err := NewBuilder(Options{}).Build(ranked, favorites)
	require.NoError(t, err)

	top2, err := NewBuilder(Options{Limit: 2}).Build(ranked, favorites)
	require.NoError(t, err)

	require.Len(t, top2.Payload.Candidates, 2)
	for i := range top2.Payload.Candidates {
		assert.Equal(t, full.Payload.Candidates[i].ExternalID, top2.Payload.Candidates[i].ExternalID)
		assert.Equal(t, i+1, top2.Payload.Candidates[i].Rank)
	}
	assert.NotContains(t, top2.Text, "Dread")

	single, err := NewBuilder(Options{}).WithLimit(1).Build(ranked, favorites)
	require.NoError(t, err)
	assert.Equal(t, singleSchema, single.Payload.ResponseSchema)
}

func TestBuild_Precision(t *testing.T) {
	ranked, favorites := fixture(t)
	p, err := NewBuilder(Options{Precision: 1}).Build(ranked, favorites)
	require.NoError(t, err)
	assert.Contains(t, p.Text, "   Score: 0.8\n")
}

func TestBuild_Empty(t *testing.T) {
	_, err := NewBuilder(Options{}).Build(nil, nil)
	assert.ErrorIs(t, err, domainerrors.ErrEmptyInput)
}

func TestGloss(t *testing.T) {
	assert.Equal(t, "title is semantically close", Gloss(similarity.SignalTitle, nil))
	assert.Equal(t, "storyline is semantically close", Gloss(similarity.SignalStoryline, nil))
	assert.Equal(t, "summary is semantically close", Gloss(similarity.SignalSummary, nil))
	assert.Equal(t, "matched mostly on tags", Gloss(similarity.SignalTag, nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "one...", Truncate("one two three", 9))
	assert.Equal(t, "one two...", Truncate("one two three", 12))
	assert.Equal(t, "a b c", Truncate("a\n b\t c", 0))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdefghijklmnop", 2))

	long := strings.Repeat("word ", 200)
	for _, limit := range []int{1, 3, 4, 10, 57, 320} {
		assert.LessOrEqual(t, utf8.RuneCountInString(Truncate(long, limit)), limit)
	}
}
