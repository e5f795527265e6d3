package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamerec/gamerec/internal/service"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Ask the agent about the top candidates",
	Long: `Recommend ranks candidates, sends each one to the configured agent
command, and posts accepted recommendations to the webhook when one is set.

Example:
  AGENT_COMMAND=./judge.sh gamerec recommend --released-on 2026-10-16`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	req, err := rankRequest()
	if err != nil {
		return err
	}
	report, err := invoke[*service.RecommendService]().Recommend(cmd.Context(), req)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}

	out := cmd.OutOrStdout()
	tw := newTable(out, "ID", "TITLE", "SCORE", "VERDICT", "REASON")
	for _, item := range report.Items {
		verdict, reason := "error", item.Error
		if item.Verdict != nil {
			verdict, reason = "skip", item.Verdict.Reason
			if item.Verdict.Recommend {
				verdict = "recommend"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%s\t%s\n", item.ExternalID, item.Title, item.Score, verdict, reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d recommended, %d failed\n", report.Recommended, report.Failed)
	return nil
}
