// Package main provides the entry point for the gamerec HTTP server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/gamerec/gamerec/internal/config"
	"github.com/gamerec/gamerec/internal/di"
	"github.com/gamerec/gamerec/internal/di/providers"
	"github.com/gamerec/gamerec/internal/logger"
)

func main() {
	var o config.Overrides
	flag.StringVar(&o.EnvFile, "env-file", ".env", "dotenv file to load")
	flag.StringVar(&o.DataPath, "data-path", "", "data directory")
	flag.StringVar(&o.LogLevel, "log-level", "", "log level")
	flag.StringVar(&o.Port, "port", "", "HTTP port")
	flag.StringVar(&o.WatchDir, "watch-dir", "", "inbox directory to ingest from")
	flag.Parse()

	// Create DI container
	injector := di.NewContainer(o)

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	cfg := do.MustInvoke[*config.Config](injector)
	server := do.MustInvoke[*providers.HTTPServerHandle](injector)

	if cfg.Watcher.Dir != "" {
		if _, err := do.Invoke[*providers.InboxHandle](injector); err != nil {
			log.Error("Failed to start inbox watcher", "error", err)
			os.Exit(1)
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutting down server gracefully...")
	case err := <-serveErr:
		log.Error("HTTP server failed", "error", err)
	}

	// The container shuts services down in reverse dependency order.
	if err := di.Shutdown(injector); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Server stopped")
}
