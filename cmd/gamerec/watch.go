package main

import (
	"github.com/spf13/cobra"

	"github.com/gamerec/gamerec/internal/config"
	"github.com/gamerec/gamerec/internal/di/providers"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest catalog files dropped into a directory",
	Long: `Watch imports every *.json and *.jsonl file in the inbox directory and
then waits for new ones. Imported files move to processed/, unreadable files
to failed/. Stop with Ctrl-C.

Example:
  gamerec watch --dir ~/gamerec-inbox`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// The root hook already built a container without the inbox dir.
		if err := shutdownContainer(); err != nil {
			return err
		}
		return initContainer(config.Overrides{WatchDir: watchDir})
	},
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "inbox directory (default: $WATCH_DIR)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if _, err := invokeE[*providers.InboxHandle](); err != nil {
		return err
	}
	<-cmd.Context().Done()
	log().Info("stopping watcher")
	return nil
}
