package api

import "github.com/gamerec/gamerec/internal/service"

// Services groups the services the handlers call.
type Services struct {
	Ingest    *service.IngestService
	Favorites *service.FavoriteService
	Games     *service.GameService
	Recommend *service.RecommendService
}
