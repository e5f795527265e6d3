package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/gamerec/gamerec/internal/api"
	"github.com/gamerec/gamerec/internal/config"
	"github.com/gamerec/gamerec/internal/logger"
	"github.com/gamerec/gamerec/internal/metrics"
	"github.com/gamerec/gamerec/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	defer h.api.Close()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server. It is not started.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	services := &api.Services{
		Ingest:    do.MustInvoke[*service.IngestService](i),
		Favorites: do.MustInvoke[*service.FavoriteService](i),
		Games:     do.MustInvoke[*service.GameService](i),
		Recommend: do.MustInvoke[*service.RecommendService](i),
	}

	apiServer := api.NewServer(services, m, api.Options{
		ImportsPerMinute: cfg.Server.ImportsPerMinute,
		ImportBurst:      cfg.Server.ImportBurst,
	}, log.WithComponent("http"))

	return &HTTPServerHandle{
		api: apiServer,
		Server: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      apiServer,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}
