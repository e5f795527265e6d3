package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/gamerec/gamerec/internal/config"
	"github.com/gamerec/gamerec/internal/logger"
	"github.com/gamerec/gamerec/internal/service"
	"github.com/gamerec/gamerec/internal/watcher"
)

// InboxHandle runs the inbox watcher in the background.
type InboxHandle struct {
	*watcher.Inbox
	cancel context.CancelFunc
	done   chan error
}

// Shutdown implements do.Shutdownable.
func (h *InboxHandle) Shutdown() error {
	h.cancel()
	return <-h.done
}

// ProvideInbox provides the inbox watcher and starts it.
func ProvideInbox(i do.Injector) (*InboxHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	dir := cfg.Watcher.Dir
	if dir == "" {
		return nil, errors.New("no inbox directory configured")
	}
	log := do.MustInvoke[*logger.Logger](i)
	ingest := do.MustInvoke[*service.IngestService](i)

	inbox, err := watcher.NewInbox(dir, ingest, cfg.Watcher.SettleDelay, log.WithComponent("watcher"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- inbox.Run(ctx) }()

	log.Info("watching inbox", "dir", dir)
	return &InboxHandle{Inbox: inbox, cancel: cancel, done: done}, nil
}
