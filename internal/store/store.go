// Package store defines the persistence boundary for games, tags, favorites,
// and embeddings.
package store

import (
	"context"
	"time"

	"github.com/gamerec/gamerec/internal/domain"
)

// Games is upsert-by-external-identity access to catalog games.
type Games interface {
	GetGame(ctx context.Context, externalID int64) (*domain.Game, error)
	GetGameBySlug(ctx context.Context, slug string) (*domain.Game, error)
	// UpsertGame inserts the game or updates it in place. CreatedAt of an
	// existing row is preserved.
	UpsertGame(ctx context.Context, g *domain.Game) error
}

// Tags is insert-or-skip access to the tag vocabulary and game links.
type Tags interface {
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	// CreateTag returns ErrAlreadyExists when the slug is taken.
	CreateTag(ctx context.Context, t *domain.Tag) error
	// LinkGameTag reports whether a new link was inserted.
	LinkGameTag(ctx context.Context, gameID int64, tagID string) (bool, error)
	ClearGameTags(ctx context.Context, gameID int64) error
}

// Embeddings is upsert-by-(game, field) access to vectors.
type Embeddings interface {
	UpsertEmbedding(ctx context.Context, e *domain.Embedding) error
	// DeleteEmbeddingsExcept removes every field of the game not listed in keep.
	DeleteEmbeddingsExcept(ctx context.Context, gameID int64, keep []domain.Field) error
}

// Tx is the set of writes that make up one atomic ingestion.
type Tx interface {
	Games
	Tags
	Embeddings
}

// ListGamesOptions filters ListGames.
type ListGamesOptions struct {
	// ReleasedOn restricts results to games released on this UTC day.
	ReleasedOn *time.Time
	// ReleasedSince restricts results to games released on or after this day.
	ReleasedSince *time.Time
	Limit         int
	Offset        int
}

// Store defines all persistence operations.
type Store interface {
	Tx

	// WithTx runs fn in a transaction. fn's error rolls everything back.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Games
	ListGames(ctx context.Context, opts ListGamesOptions) ([]*domain.Game, error)
	GetGames(ctx context.Context, externalIDs []int64) ([]*domain.Game, error)
	CountGames(ctx context.Context) (int, error)
	// DeleteGame removes the game with its tag links, favorite, and embeddings.
	DeleteGame(ctx context.Context, externalID int64) error

	// Tags
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	GetGameTags(ctx context.Context, gameID int64) ([]*domain.Tag, error)
	// GetTagSlugs returns tag slugs per game, sorted.
	GetTagSlugs(ctx context.Context, gameIDs []int64) (map[int64][]string, error)

	// Embeddings
	GetEmbeddings(ctx context.Context, gameID int64) ([]*domain.Embedding, error)
	GetEmbeddingsForGames(ctx context.Context, gameIDs []int64) (map[int64][]*domain.Embedding, error)

	// Favorites
	UpsertFavorite(ctx context.Context, f *domain.Favorite) error
	DeleteFavorite(ctx context.Context, gameID int64) error
	ListFavorites(ctx context.Context) ([]*domain.Favorite, error)

	Close() error
}
