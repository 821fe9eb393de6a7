package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/bookmarks/internal/importer"
	"github.com/user/bookmarks/internal/sources"
)

var (
	importFormat  string
	importVerbose bool
)

var importCmd = &cobra.Command{
	Use:   "import <path>...",
	Short: "Import bookmarks from browser exports",
	Long: `Import bookmarks from HTML exports (Safari, Chrome, DuckDuckGo), a Chromium
Bookmarks file, a Firefox profile or places.sqlite, or a homepage bookmarks.yaml.

Imports into an empty store keep the browser layout. Otherwise everything lands
in an "Imported from ..." folder. URLs already bookmarked are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		readers := make([]sources.Reader, 0, len(args))
		for _, path := range args {
			r, err := sources.ForSource(importFormat, path)
			if err != nil {
				return err
			}
			readers = append(readers, r)
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := importer.ImportAll(ctx, a.store, readers, importer.Options{
			Verbose: importVerbose,
			Logger:  a.log,
		})
		if err != nil {
			return err
		}

		var total int
		for _, s := range stats {
			total += s.Result.Successful
		}
		fmt.Printf("Done. %d new bookmark(s).\n", total)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "auto", "Export format (auto, html, chromium, firefox, homepage)")
	importCmd.Flags().BoolVarP(&importVerbose, "verbose", "v", false, "Print details of each export")
	rootCmd.AddCommand(importCmd)
}
