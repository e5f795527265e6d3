package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/store"
)

// FavoriteService manages the user's favorite games.
type FavoriteService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(st store.Store, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{store: st, logger: logger, now: time.Now}
}

// Add favorites a game. Favoriting it again replaces the notes.
func (s *FavoriteService) Add(ctx context.Context, externalID int64, notes string) (*domain.Favorite, error) {
	if externalID <= 0 {
		return nil, domainerrors.Validationf("invalid game id %d", externalID)
	}

	fav := &domain.Favorite{
		GameID:    externalID,
		Notes:     strings.TrimSpace(notes),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.UpsertFavorite(ctx, fav); err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFoundf("game %d not found", externalID)
		}
		return nil, fmt.Errorf("upsert favorite: %w", err)
	}

	s.logger.Info("favorite saved", "external_id", externalID)
	return s.get(ctx, externalID)
}

// Remove unfavorites a game.
func (s *FavoriteService) Remove(ctx context.Context, externalID int64) error {
	if err := s.store.DeleteFavorite(ctx, externalID); err != nil {
		if store.IsNotFound(err) {
			return domainerrors.NotFoundf("game %d is not a favorite", externalID)
		}
		return fmt.Errorf("delete favorite: %w", err)
	}
	s.logger.Info("favorite removed", "external_id", externalID)
	return nil
}

// List returns favorites ordered by external id, each with its game.
func (s *FavoriteService) List(ctx context.Context) ([]*domain.Favorite, error) {
	favs, err := s.store.ListFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}

func (s *FavoriteService) get(ctx context.Context, externalID int64) (*domain.Favorite, error) {
	favs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range favs {
		if f.GameID == externalID {
			return f, nil
		}
	}
	return nil, domainerrors.NotFoundf("game %d is not a favorite", externalID)
}
