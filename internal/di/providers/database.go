package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/gamerec/gamerec/internal/config"
	"github.com/gamerec/gamerec/internal/logger"
	"github.com/gamerec/gamerec/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}

	st, err := sqlite.Open(cfg.Storage.DatabasePath(), log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log.Debug("database opened", "path", cfg.Storage.DatabasePath())
	return &StoreHandle{Store: st}, nil
}
