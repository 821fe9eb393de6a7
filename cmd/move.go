package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	moveTo        string
	moveIndex     int
	moveFavorites bool
)

var moveCmd = &cobra.Command{
	Use:   "move <id>...",
	Short: "Move bookmarks and folders",
	Long:  "Move items into a folder (--to, default root) at --index, or reorder favorites with --favorites.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var index *int
		if cmd.Flags().Changed("index") {
			index = &moveIndex
		}

		if moveFavorites {
			err = a.mgr.MoveFavorites(ctx, args, index)
		} else {
			for _, id := range args {
				if moveTo != "" && !a.mgr.CanMove(ctx, id, moveTo) {
					return fmt.Errorf("cannot move %s into %s", id, moveTo)
				}
			}
			err = a.mgr.Move(ctx, args, index, moveTo)
		}
		if err != nil {
			return fmt.Errorf("move failed: %w", err)
		}

		fmt.Printf("Moved %d item(s)\n", len(args))
		return nil
	},
}

func init() {
	moveCmd.Flags().StringVar(&moveTo, "to", "", "Destination folder id (default: root)")
	moveCmd.Flags().IntVarP(&moveIndex, "index", "i", 0, "Position in the destination")
	moveCmd.Flags().BoolVar(&moveFavorites, "favorites", false, "Reorder favorites instead")
	rootCmd.AddCommand(moveCmd)
}
