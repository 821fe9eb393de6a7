package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all bookmarks and folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("refusing to delete all bookmarks without --yes")
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		n := a.mgr.List().Len()
		if err := a.mgr.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		fmt.Printf("Deleted %d bookmark(s)\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Confirm deletion")
	rootCmd.AddCommand(resetCmd)
}
