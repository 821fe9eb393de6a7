package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export bookmarks as a Netscape HTML file",
	Long:  "Write all bookmarks and favorites as an HTML bookmarks file (stdout when no file is given).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var w io.Writer = os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			defer f.Close()
			w = f
		}

		if err := a.mgr.Export(cmd.Context(), w); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if len(args) == 1 {
			fmt.Fprintf(os.Stderr, "Exported %d bookmark(s) to %s\n", a.mgr.List().Len(), args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
