package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamerec/gamerec/internal/service"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Ingest a catalog file",
	Long: `Import ingests a JSON array or JSON lines file of catalog records.

Each record is validated, classified as new, changed, or unchanged, and
written in its own transaction. A bad record is reported and skipped.

Example:
  gamerec import --file releases.jsonl
  gamerec import --file releases.json --json`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "payload file (required)")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	ingest := invoke[*service.IngestService]()

	report, err := ingest.ImportFile(cmd.Context(), importFile)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}

	out := cmd.OutOrStdout()
	tw := newTable(out, "#", "ID", "TITLE", "RESULT")
	for _, item := range report.Items {
		result := string(item.Classification)
		if item.Failed() {
			result = fmt.Sprintf("FAILED (%s): %s", item.ErrorCode, item.Error)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", item.Index, item.ExternalID, item.Title, result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	c := report.Counts
	fmt.Fprintf(out, "\nrun %s: %d new, %d changed, %d unchanged, %d failed\n",
		report.RunID, c.New, c.Changed, c.Unchanged, c.Failed)
	return nil
}
