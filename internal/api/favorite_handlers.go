package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamerec/gamerec/internal/domain"
)

func (s *Server) registerFavoriteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFavorites",
		Method:      http.MethodGet,
		Path:        "/api/v1/favorites",
		Summary:     "List favorites",
		Tags:        []string{"Favorites"},
	}, s.handleListFavorites)

	huma.Register(s.api, huma.Operation{
		OperationID: "putFavorite",
		Method:      http.MethodPut,
		Path:        "/api/v1/favorites/{externalID}",
		Summary:     "Favorite a game",
		Description: "Marks a game as favorite. Repeating the call replaces the notes.",
		Tags:        []string{"Favorites"},
	}, s.handlePutFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteFavorite",
		Method:        http.MethodDelete,
		Path:          "/api/v1/favorites/{externalID}",
		Summary:       "Unfavorite a game",
		Tags:          []string{"Favorites"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteFavorite)
}

// ListFavoritesOutput wraps the favorites for Huma.
type ListFavoritesOutput struct {
	Body struct {
		Favorites []*domain.Favorite `json:"favorites"`
	}
}

// PutFavoriteInput favorites a game.
type PutFavoriteInput struct {
	ExternalID int64 `path:"externalID" minimum:"1" doc:"Catalog id of the game"`
	Body       struct {
		Notes string `json:"notes,omitempty" maxLength:"2000" doc:"Why the game is a favorite"`
	}
}

// FavoriteOutput wraps one favorite for Huma.
type FavoriteOutput struct {
	Body *domain.Favorite
}

// DeleteFavoriteInput identifies the favorite to remove.
type DeleteFavoriteInput struct {
	ExternalID int64 `path:"externalID" minimum:"1" doc:"Catalog id of the game"`
}

func (s *Server) handleListFavorites(ctx context.Context, _ *struct{}) (*ListFavoritesOutput, error) {
	favs, err := s.services.Favorites.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListFavoritesOutput{}
	out.Body.Favorites = favs
	return out, nil
}

func (s *Server) handlePutFavorite(ctx context.Context, input *PutFavoriteInput) (*FavoriteOutput, error) {
	fav, err := s.services.Favorites.Add(ctx, input.ExternalID, input.Body.Notes)
	if err != nil {
		return nil, err
	}
	return &FavoriteOutput{Body: fav}, nil
}

func (s *Server) handleDeleteFavorite(ctx context.Context, input *DeleteFavoriteInput) (*struct{}, error) {
	if err := s.services.Favorites.Remove(ctx, input.ExternalID); err != nil {
		return nil, err
	}
	return nil, nil
}
