package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamerec/gamerec/internal/catalog"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/logger"
	"github.com/gamerec/gamerec/internal/prompt"
	"github.com/gamerec/gamerec/internal/similarity"
	"github.com/gamerec/gamerec/internal/store"
)

func storeListAll() store.ListGamesOptions { return store.ListGamesOptions{} }

// seedNovaDrift ingests a favorite, a close candidate, and an unrelated one.
func seedNovaDrift(t *testing.T, env *testEnv) {
	t.Helper()
	env.mustIngest(t,
		testPayload(1, "Nova Drift", "Roguelike", "Space", "Arcade"),
		testPayload(2, "Nova Drift 2", "roguelike", "SPACE"),
		testPayload(3, "Farm Days", "Farming"),
	)
	_, err := env.favorites.Add(context.Background(), 1, "love the ship builds")
	require.NoError(t, err)
}

func TestRank_NoFavorites(t *testing.T) {
	env := newTestEnv(t)
	env.mustIngest(t, testPayload(1, "Anything"))

	_, err := env.recommend.Rank(context.Background(), RankRequest{})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrEmptyInput))
}

func TestRank_NovaDriftScenario(t *testing.T) {
	env := newTestEnv(t)
	seedNovaDrift(t, env)

	r, err := env.recommend.Rank(context.Background(), RankRequest{})
	require.NoError(t, err)

	// The favorite itself is not a candidate.
	require.Len(t, r.Candidates, 2)
	top := r.Candidates[0]
	assert.Equal(t, int64(2), top.Candidate.ID())
	assert.Equal(t, int64(1), top.Matched.ID())
	assert.InDelta(t, 4.0/9.0+1.0/3.0, top.Overall, 1e-6)
	assert.Equal(t, similarity.SignalTag, top.Dominant())

	tag, _ := top.Breakdown.Get(similarity.SignalTag)
	assert.InDelta(t, 2.0/3.0, tag.Score, 1e-12)

	assert.Equal(t, int64(3), r.Candidates[1].Candidate.ID())
	assert.Less(t, r.Candidates[1].Overall, top.Overall)

	require.Len(t, r.Favorites, 1)
	assert.Equal(t, "love the ship builds", r.Favorites[0].Notes)
}

func TestRank_ExplicitCandidates(t *testing.T) {
	env := newTestEnv(t)
	seedNovaDrift(t, env)
	ctx := context.Background()

	r, err := env.recommend.Rank(ctx, RankRequest{CandidateIDs: []int64{3, 3, 1}})
	require.NoError(t, err)
	require.Len(t, r.Candidates, 1)
	assert.Equal(t, int64(3), r.Candidates[0].Candidate.ID())

	_, err = env.recommend.Rank(ctx, RankRequest{CandidateIDs: []int64{2, 404}})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestRank_DimensionMismatchSurfaces(t *testing.T) {
	env := newTestEnv(t)
	env.provider.override = map[string][]float32{"Odd One": {1, 0}}
	env.mustIngest(t, testPayload(1, "Fav"), testPayload(2, "Odd One"))
	_, err := env.favorites.Add(context.Background(), 1, "")
	require.NoError(t, err)

	_, err = env.recommend.Rank(context.Background(), RankRequest{})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrDimensionMismatch))
}

func TestRank_ParallelMatchesSequential(t *testing.T) {
	env := newTestEnv(t)
	payloads := []catalog.Payload{testPayload(1, "Favorite", "a", "b", "c", "d")}
	for i := int64(2); i <= 40; i++ {
		labels := []string{"a", "b", "c", "d", "e", "f"}[:i%6+1]
		payloads = append(payloads, testPayload(i, fmt.Sprintf("Game %d", i), labels...))
	}
	env.mustIngest(t, payloads...)
	_, err := env.favorites.Add(context.Background(), 1, "")
	require.NoError(t, err)

	parallel, err := env.recommend.Rank(context.Background(), RankRequest{Limit: 100})
	require.NoError(t, err)

	engine, err := similarity.NewEngine(similarity.DefaultWeights())
	require.NoError(t, err)
	sequential := NewRecommendService(env.store, engine, prompt.NewBuilder(prompt.Options{}), nil, nil, nil,
		RecommendOptions{Workers: 1}, logger.Discard())
	seq, err := sequential.Rank(context.Background(), RankRequest{Limit: 100})
	require.NoError(t, err)

	require.Len(t, parallel.Candidates, 39)
	require.Len(t, seq.Candidates, 39)
	for i := range seq.Candidates {
		assert.Equal(t, seq.Candidates[i].Candidate.ID(), parallel.Candidates[i].Candidate.ID())
		assert.Equal(t, seq.Candidates[i].Overall, parallel.Candidates[i].Overall)
	}
}

func TestPrompt_Deterministic(t *testing.T) {
	env := newTestEnv(t)
	seedNovaDrift(t, env)
	ctx := context.Background()

	a, err := env.recommend.Prompt(ctx, RankRequest{})
	require.NoError(t, err)
	b, err := env.recommend.Prompt(ctx, RankRequest{})
	require.NoError(t, err)

	assert.Equal(t, a.Text, b.Text)
	assert.Contains(t, a.Text, "1. Nova Drift 2 (id 2)")
	assert.Contains(t, a.Text, "Best match: Nova Drift (id 1)")
	assert.Contains(t, a.Text, "Score: 0.778")

	top1, err := env.recommend.Prompt(ctx, RankRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, top1.Payload.Candidates, 1)
	assert.NotContains(t, top1.Text, "Farm Days")
}

func TestPrompt_RequestLimitWins(t *testing.T) {
	env := newTestEnv(t)
	env.mustIngest(t,
		testPayload(1, "Favorite", "a", "b"),
		testPayload(2, "Two", "a"),
		testPayload(3, "Three", "b"),
		testPayload(4, "Four", "a", "b"),
		testPayload(5, "Five", "c"),
	)
	_, err := env.favorites.Add(context.Background(), 1, "")
	require.NoError(t, err)

	engine, err := similarity.NewEngine(similarity.DefaultWeights())
	require.NoError(t, err)
	svc := NewRecommendService(env.store, engine, prompt.NewBuilder(prompt.Options{Limit: 2}), nil, nil, nil,
		RecommendOptions{DefaultLimit: 3, Workers: 2}, logger.Discard())

	p, err := svc.Prompt(context.Background(), RankRequest{Limit: 4})
	require.NoError(t, err)
	assert.Len(t, p.Payload.Candidates, 4)

	p, err = svc.Prompt(context.Background(), RankRequest{})
	require.NoError(t, err)
	assert.Len(t, p.Payload.Candidates, 3)
}

func TestRecommend(t *testing.T) {
	env := newTestEnv(t)
	seedNovaDrift(t, env)
	env.judge.accept = "Nova Drift 2"

	report, err := env.recommend.Recommend(context.Background(), RankRequest{})
	require.NoError(t, err)

	require.Len(t, report.Items, 2)
	assert.Equal(t, 1, report.Recommended)
	assert.Zero(t, report.Failed)
	assert.True(t, report.Items[0].Notified)
	assert.False(t, report.Items[1].Notified)

	// Each candidate gets its own single-candidate prompt.
	require.Len(t, env.judge.prompts, 2)
	assert.NotContains(t, env.judge.prompts[0], "Farm Days")

	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, "Nova Drift 2", env.notifier.sent[0].Title)
	assert.Equal(t, "Nova Drift", env.notifier.sent[0].MatchedTitle)
}

func TestRecommend_Failures(t *testing.T) {
	env := newTestEnv(t)
	seedNovaDrift(t, env)

	env.judge.err = errors.New("agent crashed")
	report, err := env.recommend.Recommend(context.Background(), RankRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, "agent crashed", report.Items[0].Error)
	assert.Empty(t, env.notifier.sent)

	noJudge := NewRecommendService(env.store, env.recommend.engine, env.recommend.builder, nil, nil, nil,
		RecommendOptions{}, logger.Discard())
	_, err = noJudge.Recommend(context.Background(), RankRequest{})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnavailable))
}
