package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gamerec/gamerec/internal/errors"
)

func TestFavoriteService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustIngest(t, testPayload(2, "Into the Breach"), testPayload(1, "FTL"))

	fav, err := env.favorites.Add(ctx, 2, "  tactics  ")
	require.NoError(t, err)
	assert.Equal(t, "tactics", fav.Notes)
	require.NotNil(t, fav.Game)
	assert.Equal(t, "Into the Breach", fav.Game.Title)

	_, err = env.favorites.Add(ctx, 1, "")
	require.NoError(t, err)

	// Re-favoriting is an upsert.
	_, err = env.favorites.Add(ctx, 2, "perfect tactics")
	require.NoError(t, err)

	favs, err := env.favorites.List(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, int64(1), favs[0].GameID)
	assert.Equal(t, "perfect tactics", favs[1].Notes)

	require.NoError(t, env.favorites.Remove(ctx, 1))
	err = env.favorites.Remove(ctx, 1)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestFavoriteService_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.favorites.Add(ctx, 99, "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	_, err = env.favorites.Add(ctx, 0, "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestGameService_Get(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustIngest(t, testPayload(5, "Celeste", "Platformer", "Indie"))

	detail, err := env.games.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Celeste", detail.Game.Title)
	assert.Len(t, detail.Tags, 2)
	assert.Len(t, detail.Embedded, 1)

	games, total, err := env.games.List(ctx, storeListAll())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, games, 1)

	_, err = env.games.Get(ctx, 6)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
