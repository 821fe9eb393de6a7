package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle the favorite flag of a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.mgr.ToggleFavorite(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if b.IsFavorite {
			fmt.Printf("Favorited: %s\n", b.Title)
		} else {
			fmt.Printf("Unfavorited: %s\n", b.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(favoriteCmd)
}
