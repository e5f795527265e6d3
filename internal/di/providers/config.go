// Package providers contains dependency injection providers for gamerec.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/gamerec/gamerec/internal/config"
	"github.com/gamerec/gamerec/internal/logger"
	"github.com/gamerec/gamerec/internal/metrics"
)

// ProvideConfig provides the application configuration. Command-line
// overrides are read from the injector when present.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	overrides, err := do.Invoke[config.Overrides](i)
	if err != nil {
		overrides = config.Overrides{}
	}
	return config.LoadConfig(overrides)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
		"embeddings", cfg.Embedding.Enabled(),
		"agent", cfg.Agent.Command != "",
	)

	return log, nil
}

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}
