package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Remove bookmarks and folders",
	Long:  "Remove items by id. Removing a folder removes everything inside it.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		for _, id := range args {
			if _, ok := a.mgr.List().Node(id); !ok {
				return fmt.Errorf("not found: %s", id)
			}
		}
		if err := a.mgr.Remove(cmd.Context(), args); err != nil {
			return fmt.Errorf("remove failed: %w", err)
		}

		fmt.Printf("Removed %d item(s)\n", len(args))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
