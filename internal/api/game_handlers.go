package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamerec/gamerec/internal/catalog"
	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/service"
	"github.com/gamerec/gamerec/internal/store"
)

var listOne = store.ListGamesOptions{Limit: 1}

func (s *Server) registerGameRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGames",
		Method:      http.MethodGet,
		Path:        "/api/v1/games",
		Summary:     "List games",
		Description: "Returns ingested games, newest release first",
		Tags:        []string{"Games"},
	}, s.handleListGames)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGame",
		Method:      http.MethodGet,
		Path:        "/api/v1/games/{externalID}",
		Summary:     "Get game",
		Description: "Returns a game with its tags and embedded fields",
		Tags:        []string{"Games"},
	}, s.handleGetGame)

	huma.Register(s.api, huma.Operation{
		OperationID:   "importGames",
		Method:        http.MethodPost,
		Path:          "/api/v1/games/import",
		Summary:       "Import games",
		Description:   "Ingests a batch of catalog payloads and reports the outcome of each",
		Tags:          []string{"Games"},
		DefaultStatus: http.StatusOK,
		Middlewares:   s.rateLimited(),
	}, s.handleImportGames)
}

// === DTOs ===

// ListGamesInput contains parameters for listing games.
type ListGamesInput struct {
	ReleasedOn    string `query:"released_on" doc:"Only games released on this day (YYYY-MM-DD)"`
	ReleasedSince string `query:"released_since" doc:"Only games released on or after this day (YYYY-MM-DD)"`
	Limit         int    `query:"limit" default:"50" minimum:"1" maximum:"500" doc:"Page size"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

// ListGamesResponse is a page of games.
type ListGamesResponse struct {
	Games []*domain.Game `json:"games" doc:"Games on this page"`
	Total int            `json:"total" doc:"Total number of ingested games"`
}

// ListGamesOutput wraps the list response for Huma.
type ListGamesOutput struct {
	Body ListGamesResponse
}

// GetGameInput identifies a game.
type GetGameInput struct {
	ExternalID int64 `path:"externalID" minimum:"1" doc:"Catalog id of the game"`
}

// GameOutput wraps a game detail for Huma.
type GameOutput struct {
	Body *service.GameDetail
}

// ImportGamesInput carries catalog payloads as a JSON array or JSON lines.
type ImportGamesInput struct {
	RawBody []byte `contentType:"application/json"`
}

// ImportGamesOutput wraps an ingest report for Huma.
type ImportGamesOutput struct {
	Body *service.IngestReport
}

// === Handlers ===

func (s *Server) handleListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	on, err := parseDate("released_on", input.ReleasedOn)
	if err != nil {
		return nil, err
	}
	since, err := parseDate("released_since", input.ReleasedSince)
	if err != nil {
		return nil, err
	}

	games, total, err := s.services.Games.List(ctx, store.ListGamesOptions{
		ReleasedOn:    on,
		ReleasedSince: since,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &ListGamesOutput{Body: ListGamesResponse{Games: games, Total: total}}, nil
}

func (s *Server) handleGetGame(ctx context.Context, input *GetGameInput) (*GameOutput, error) {
	detail, err := s.services.Games.Get(ctx, input.ExternalID)
	if err != nil {
		return nil, err
	}
	return &GameOutput{Body: detail}, nil
}

func (s *Server) handleImportGames(ctx context.Context, input *ImportGamesInput) (*ImportGamesOutput, error) {
	payloads, err := catalog.DecodePayloads(input.RawBody)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid import body")
	}
	if len(payloads) == 0 {
		return nil, domainerrors.EmptyInput("import body holds no games")
	}

	report, err := s.services.Ingest.IngestBatch(ctx, payloads)
	if err != nil {
		return nil, err
	}
	return &ImportGamesOutput{Body: report}, nil
}
