package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamerec/gamerec/internal/catalog"
	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/id"
	"github.com/gamerec/gamerec/internal/store"
)

func TestIngestBatch_SecondRunIsUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := testPayload(1, "Hades", "Roguelike", "Action")

	first := env.mustIngest(t, p)
	assert.True(t, id.HasPrefix(first.RunID, id.PrefixRun))
	require.Len(t, first.Items, 1)
	assert.Equal(t, catalog.New, first.Items[0].Classification)
	assert.Equal(t, []string{"roguelike", "action"}, first.Items[0].Tags)
	assert.Equal(t, []domain.Field{domain.FieldTitle}, first.Items[0].Embedded)
	assert.Equal(t, 1, env.provider.callCount())

	stored, err := env.store.GetGame(ctx, 1)
	require.NoError(t, err)

	second := env.mustIngest(t, p)
	assert.Equal(t, catalog.Unchanged, second.Items[0].Classification)
	assert.Equal(t, IngestCounts{Unchanged: 1}, second.Counts)
	assert.NotEqual(t, first.RunID, second.RunID)

	// No embedding call and no write.
	assert.Equal(t, 1, env.provider.callCount())
	again, err := env.store.GetGame(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, stored.UpdatedAt, again.UpdatedAt)
}

func TestIngestBatch_ChangedReplacesTagsAndEmbeddings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := testPayload(1, "Subnautica", "Survival", "Ocean")
	p.Summary = "Dive into an alien ocean."
	first := env.mustIngest(t, p)
	assert.Equal(t, []domain.Field{domain.FieldTitle, domain.FieldStoryline, domain.FieldSummary}, first.Items[0].Embedded)

	p.Summary = ""
	p.Tags = []string{"Ocean", "Crafting"}
	second := env.mustIngest(t, p)
	require.Equal(t, catalog.Changed, second.Items[0].Classification)
	assert.Equal(t, []domain.Field{domain.FieldTitle}, second.Items[0].Embedded)

	embs, err := env.store.GetEmbeddings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, embs, 1)
	assert.Equal(t, domain.FieldTitle, embs[0].Field)

	slugs, err := env.store.GetTagSlugs(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, []string{"crafting", "ocean"}, slugs[1])
}

func TestIngestBatch_FailuresDoNotAbortBatch(t *testing.T) {
	env := newTestEnv(t)

	doom := testPayload(1, "Doom")
	doom.Slug = "doom"
	noDescription := testPayload(2, "Quake")
	noDescription.Description = "  "
	slugThief := testPayload(3, "Doom Eternal")
	slugThief.Slug = "doom"

	report, err := env.ingest.IngestBatch(context.Background(), []catalog.Payload{
		doom, noDescription, slugThief, testPayload(4, "Heretic"),
	})
	require.NoError(t, err)

	assert.Equal(t, IngestCounts{New: 2, Failed: 2}, report.Counts)
	require.Len(t, report.Items, 4)
	assert.Equal(t, domainerrors.CodeValidation, report.Items[1].ErrorCode)
	assert.Equal(t, domainerrors.CodeConflict, report.Items[2].ErrorCode)
	assert.Equal(t, 2, report.Items[2].Index)
	assert.NotEmpty(t, report.Items[2].Error)
	assert.Equal(t, catalog.New, report.Items[3].Classification)
}

func TestIngestBatch_EmbeddingFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.provider.err = errors.New("provider offline")

	report, err := env.ingest.IngestBatch(context.Background(), []catalog.Payload{testPayload(1, "Celeste", "Platformer")})
	require.NoError(t, err)

	require.Len(t, report.Items, 1)
	assert.Equal(t, domainerrors.CodeUnavailable, report.Items[0].ErrorCode)
	assert.Empty(t, report.Items[0].Classification)

	_, err = env.store.GetGame(context.Background(), 1)
	assert.True(t, store.IsNotFound(err))
	_, err = env.store.GetTagBySlug(context.Background(), "platformer")
	assert.True(t, store.IsNotFound(err))
}

func TestIngestBatch_CanceledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.ingest.IngestBatch(ctx, []catalog.Payload{testPayload(1, "X")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportFile(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "games.jsonl")
	lines := `{"id": 10, "name": "Tunic", "description": "A fox.", "tags": ["Adventure"], "release_date": "2022-03-16"}
{"id": 11, "name": "Outer Wilds", "description": "A loop.", "release_date": 1590969600}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o600))

	report, err := env.ingest.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, IngestCounts{New: 2}, report.Counts)

	g, err := env.store.GetGame(context.Background(), 11)
	require.NoError(t, err)
	require.NotNil(t, g.ReleaseDate)
	assert.Equal(t, "2020-06-01", g.ReleaseDate.Format("2006-01-02"))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id": `), 0o600))
	_, err = env.ingest.ImportFile(context.Background(), bad)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}
