package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/service"
)

var favoriteNotes string

var favoriteCmd = &cobra.Command{
	Use:   "favorite",
	Short: "Manage favorite games",
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add <external-id>",
	Short: "Mark an ingested game as favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		fav, err := invoke[*service.FavoriteService]().Add(cmd.Context(), id, favoriteNotes)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), fav)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "favorited %s (id %d)\n", fav.Game.Title, fav.GameID)
		return nil
	},
}

var favoriteRemoveCmd = &cobra.Command{
	Use:     "remove <external-id>",
	Aliases: []string{"rm"},
	Short:   "Unmark a favorite",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := invoke[*service.FavoriteService]().Remove(cmd.Context(), id); err != nil {
			return err
		}
		if !flagJSON {
			fmt.Fprintf(cmd.OutOrStdout(), "removed favorite %d\n", id)
		}
		return nil
	},
}

var favoriteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List favorites",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		favs, err := invoke[*service.FavoriteService]().List(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), favs)
		}
		tw := newTable(cmd.OutOrStdout(), "ID", "TITLE", "RELEASED", "NOTES")
		for _, f := range favs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.GameID, f.Game.Title, formatDate(f.Game.ReleaseDate), f.Notes)
		}
		return tw.Flush()
	},
}

func init() {
	favoriteAddCmd.Flags().StringVar(&favoriteNotes, "notes", "", "why you like it")

	favoriteCmd.AddCommand(favoriteAddCmd)
	favoriteCmd.AddCommand(favoriteRemoveCmd)
	favoriteCmd.AddCommand(favoriteListCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.Validationf("invalid external id %q", s)
	}
	return id, nil
}
