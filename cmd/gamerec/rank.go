package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamerec/gamerec/internal/ranking"
	"github.com/gamerec/gamerec/internal/service"
)

// Flags shared by rank, prompt, and recommend.
var (
	rankCandidates    []int64
	rankReleasedOn    string
	rankReleasedSince string
	rankLimit         int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidates against your favorites",
	Long: `Rank scores every candidate against each favorite and lists them best
first, with the favorite each one matched and the signal that dominated.

Example:
  gamerec rank --released-on 2026-10-16
  gamerec rank --candidates 1942,7346 --json`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the agent prompt for the ranked candidates",
	Args:  cobra.NoArgs,
	RunE:  runPrompt,
}

func init() {
	for _, cmd := range []*cobra.Command{rankCmd, promptCmd, recommendCmd} {
		cmd.Flags().Int64SliceVar(&rankCandidates, "candidates", nil, "rank exactly these external ids")
		cmd.Flags().StringVar(&rankReleasedOn, "released-on", "", "only candidates released on this day (YYYY-MM-DD)")
		cmd.Flags().StringVar(&rankReleasedSince, "released-since", "", "only candidates released on or after this day (YYYY-MM-DD)")
		cmd.Flags().IntVarP(&rankLimit, "limit", "n", 0, "keep the top-N candidates (default: $PROMPT_LIMIT)")
	}
}

func rankRequest() (service.RankRequest, error) {
	on, err := parseDate("released-on", rankReleasedOn)
	if err != nil {
		return service.RankRequest{}, err
	}
	since, err := parseDate("released-since", rankReleasedSince)
	if err != nil {
		return service.RankRequest{}, err
	}
	return service.RankRequest{
		CandidateIDs:  rankCandidates,
		ReleasedOn:    on,
		ReleasedSince: since,
		Limit:         rankLimit,
	}, nil
}

func runRank(cmd *cobra.Command, args []string) error {
	req, err := rankRequest()
	if err != nil {
		return err
	}
	r, err := invoke[*service.RecommendService]().Rank(cmd.Context(), req)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), ranking.Summarize(r.Candidates))
	}

	tw := newTable(cmd.OutOrStdout(), "#", "ID", "TITLE", "RELEASED", "SCORE", "MATCHED", "SIGNAL")
	for i, c := range r.Candidates {
		g := c.Candidate.Game
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.3f\t%s\t%s\n",
			i+1, g.ExternalID, g.Title, formatDate(g.ReleaseDate), c.Overall, c.Matched.Game.Title, c.Dominant())
	}
	return tw.Flush()
}

func runPrompt(cmd *cobra.Command, args []string) error {
	req, err := rankRequest()
	if err != nil {
		return err
	}
	p, err := invoke[*service.RecommendService]().Prompt(cmd.Context(), req)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), p.Payload)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), p.Text)
	return err
}
