package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mkdirParent string

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <title>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := a.mgr.MakeFolder(cmd.Context(), args[0], mkdirParent)
		if err != nil {
			return fmt.Errorf("failed to create folder: %w", err)
		}

		fmt.Printf("Created: %s (%s)\n", f.Title, f.ID)
		return nil
	},
}

func init() {
	mkdirCmd.Flags().StringVarP(&mkdirParent, "parent", "p", "", "Parent folder id (default: root)")
	rootCmd.AddCommand(mkdirCmd)
}
