// Package di provides dependency injection configuration for gamerec.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/gamerec/gamerec/internal/config"
	"github.com/gamerec/gamerec/internal/di/providers"
	"github.com/gamerec/gamerec/internal/logger"
	"github.com/gamerec/gamerec/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(overrides config.Overrides) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, overrides)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideEmbedder)

	// Business services
	do.Provide(injector, providers.ProvideIngestService)
	do.Provide(injector, providers.ProvideFavoriteService)
	do.Provide(injector, providers.ProvideGameService)
	do.Provide(injector, providers.ProvideRecommendService)

	// Workers
	do.Provide(injector, providers.ProvideInbox)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes the core services so configuration and database
// errors surface before any command runs.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.EmbedderHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.IngestService](injector)
	_ = do.MustInvoke[*service.FavoriteService](injector)
	_ = do.MustInvoke[*service.GameService](injector)
	if _, err := do.Invoke[*service.RecommendService](injector); err != nil {
		return err
	}
	return nil
}

// Shutdown stops every service in reverse dependency order. The report is
// only an error when at least one service failed to stop.
func Shutdown(injector *do.RootScope) error {
	if injector == nil {
		return nil
	}
	report := injector.Shutdown()
	if report == nil || report.Succeed {
		return nil
	}
	return fmt.Errorf("shutdown: %s", report.Error())
}
