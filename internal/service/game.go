package service

import (
	"context"
	"fmt"

	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/store"
)

// GameDetail is a game with its reconciled tags and embedded fields.
type GameDetail struct {
	Game     *domain.Game   `json:"game"`
	Tags     []*domain.Tag  `json:"tags"`
	Embedded []domain.Field `json:"embedded"`
}

// GameService provides read access to the ingested catalog.
type GameService struct {
	store store.Store
}

// NewGameService creates a new game service.
func NewGameService(st store.Store) *GameService {
	return &GameService{store: st}
}

// List returns games newest first with the total count.
func (s *GameService) List(ctx context.Context, opts store.ListGamesOptions) ([]*domain.Game, int, error) {
	games, err := s.store.ListGames(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	total, err := s.store.CountGames(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}
	return games, total, nil
}

// Get returns one game with its tags and embedded fields.
func (s *GameService) Get(ctx context.Context, externalID int64) (*GameDetail, error) {
	g, err := s.store.GetGame(ctx, externalID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFoundf("game %d not found", externalID)
		}
		return nil, fmt.Errorf("get game: %w", err)
	}

	tags, err := s.store.GetGameTags(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("get game tags: %w", err)
	}
	embs, err := s.store.GetEmbeddings(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}

	fields := make([]domain.Field, len(embs))
	for i, e := range embs {
		fields[i] = e.Field
	}
	return &GameDetail{Game: g, Tags: tags, Embedded: fields}, nil
}
