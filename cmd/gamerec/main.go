// Package main provides the gamerec CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/gamerec/gamerec/internal/config"
	"github.com/gamerec/gamerec/internal/di"
	"github.com/gamerec/gamerec/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Global flag values.
var (
	flagDataPath string
	flagLogLevel string
	flagEnvFile  string
	flagJSON     bool
)

// injector is built by PersistentPreRunE for every command but version.
var injector *do.RootScope

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gamerec",
	Short: "gamerec recommends new games based on your favorites",
	Long: `gamerec ingests game catalog records, scores new releases against the
games you marked as favorites, and asks an external agent whether each
close match is worth recommending.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return initContainer(config.Overrides{})
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownContainer()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataPath, "data-path", "", "data directory (default: $DATA_PATH or ~/.gamerec)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file to load")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(recommendCmd)
}

// initContainer builds the DI container from the global flags plus o.
func initContainer(o config.Overrides) error {
	if injector != nil {
		return nil
	}
	o.EnvFile = flagEnvFile
	o.DataPath = flagDataPath
	o.LogLevel = flagLogLevel

	injector = di.NewContainer(o)
	if err := di.Bootstrap(injector); err != nil {
		_ = shutdownContainer()
		return err
	}
	return nil
}

func shutdownContainer() error {
	if injector == nil {
		return nil
	}
	err := di.Shutdown(injector)
	injector = nil
	return err
}

func invoke[T any]() T {
	return do.MustInvoke[T](injector)
}

func invokeE[T any]() (T, error) {
	return do.Invoke[T](injector)
}

func log() *logger.Logger {
	return invoke[*logger.Logger]()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gamerec version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "gamerec", version)
	},
}
