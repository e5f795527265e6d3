package providers

import (
	"github.com/samber/do/v2"

	"github.com/gamerec/gamerec/internal/agent"
	"github.com/gamerec/gamerec/internal/catalog"
	"github.com/gamerec/gamerec/internal/config"
	"github.com/gamerec/gamerec/internal/logger"
	"github.com/gamerec/gamerec/internal/metrics"
	"github.com/gamerec/gamerec/internal/notify"
	"github.com/gamerec/gamerec/internal/prompt"
	"github.com/gamerec/gamerec/internal/service"
	"github.com/gamerec/gamerec/internal/similarity"
	"github.com/gamerec/gamerec/internal/tags"
	"github.com/gamerec/gamerec/internal/validation"
)

// ProvideIngestService provides the ingest service.
func ProvideIngestService(i do.Injector) (*service.IngestService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	embedder := do.MustInvoke[*EmbedderHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIngestService(
		storeHandle.Store,
		catalog.NewNormalizer(validation.New()),
		tags.NewReconciler(log.WithComponent("tags")),
		embedder.Embedder,
		m,
		log.WithComponent("ingest"),
	), nil
}

// ProvideFavoriteService provides the favorite service.
func ProvideFavoriteService(i do.Injector) (*service.FavoriteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewFavoriteService(storeHandle.Store, log.WithComponent("favorites")), nil
}

// ProvideGameService provides the game service.
func ProvideGameService(i do.Injector) (*service.GameService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewGameService(storeHandle.Store), nil
}

// ProvideRecommendService provides the recommend service with its engine,
// prompt builder, agent, and notifier.
func ProvideRecommendService(i do.Injector) (*service.RecommendService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	engine, err := similarity.NewEngine(similarity.Weights{
		Tag:       cfg.Similarity.TagWeight,
		Title:     cfg.Similarity.TitleWeight,
		Storyline: cfg.Similarity.StorylineWeight,
		Summary:   cfg.Similarity.SummaryWeight,
	})
	if err != nil {
		return nil, err
	}

	builder := prompt.NewBuilder(prompt.Options{
		Precision: cfg.Similarity.ScorePrecision,
	})

	var judge agent.Judge
	if cfg.Agent.Command != "" {
		judge = agent.NewCommandJudge(cfg.Agent.Command, cfg.Agent.Args, cfg.Agent.Timeout, log.WithComponent("agent"))
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Notifier.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.Notifier.WebhookURL, cfg.Notifier.Username, log.WithComponent("notify"))
	}

	return service.NewRecommendService(
		storeHandle.Store,
		engine,
		builder,
		judge,
		notifier,
		m,
		service.RecommendOptions{
			DefaultLimit: cfg.Similarity.PromptLimit,
			Workers:      cfg.Similarity.Workers,
		},
		log.WithComponent("recommend"),
	), nil
}
