package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/gamerec/gamerec/internal/config"
	"github.com/gamerec/gamerec/internal/embedding"
	"github.com/gamerec/gamerec/internal/logger"
)

// EmbedderHandle wraps the embedder and closes its cache on shutdown.
type EmbedderHandle struct {
	*embedding.Embedder
	cache *embedding.Cache
}

// Shutdown implements do.Shutdownable.
func (h *EmbedderHandle) Shutdown() error {
	if h.cache == nil {
		return nil
	}
	return h.cache.Close()
}

// ProvideEmbedder provides the embedder. Without a configured provider the
// embedder is disabled and games are scored on tags alone.
func ProvideEmbedder(i do.Injector) (*EmbedderHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Embedding.Enabled() {
		log.Info("no embedding provider configured, scoring on tags only")
		return &EmbedderHandle{Embedder: embedding.NewEmbedder(nil, log.Logger)}, nil
	}

	httpProvider := embedding.NewHTTPProvider(embedding.HTTPConfig{
		BaseURL:           cfg.Embedding.BaseURL,
		APIKey:            cfg.Embedding.APIKey,
		Model:             cfg.Embedding.Model,
		RequestsPerMinute: cfg.Embedding.RequestsPerMinute,
		Timeout:           cfg.Embedding.Timeout,
	}, log.Logger)

	cache, err := embedding.OpenCache(cfg.Storage.CachePath(), httpProvider, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}

	return &EmbedderHandle{
		Embedder: embedding.NewEmbedder(cache, log.Logger),
		cache:    cache,
	}, nil
}
