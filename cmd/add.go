package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/bookmarks/internal/importer"
)

var (
	addTitle    string
	addParent   string
	addFavorite bool
	addIndex    int
	addNoFetch  bool
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a bookmark",
	Long:  "Bookmark a URL. Without --title the page title is fetched.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		title := addTitle
		if title == "" {
			title = url
			if !addNoFetch {
				title = importer.NewTitleFetcher().TitleOrURL(ctx, url)
			}
		}

		var index *int
		if cmd.Flags().Changed("index") {
			index = &addIndex
		}

		b, err := a.mgr.MakeBookmark(ctx, url, title, addFavorite, addParent, index)
		if err != nil {
			return fmt.Errorf("failed to add URL: %w", err)
		}

		fmt.Printf("Added: %s (%s)\n", b.Title, b.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Bookmark title")
	addCmd.Flags().StringVarP(&addParent, "parent", "p", "", "Parent folder id (default: root)")
	addCmd.Flags().BoolVarP(&addFavorite, "favorite", "f", false, "Add to favorites")
	addCmd.Flags().IntVarP(&addIndex, "index", "i", 0, "Position in the parent folder")
	addCmd.Flags().BoolVar(&addNoFetch, "no-fetch", false, "Do not fetch the page title")
	rootCmd.AddCommand(addCmd)
}
