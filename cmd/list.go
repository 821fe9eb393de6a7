package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/bookmarks/internal/db"
	"github.com/user/bookmarks/internal/importer"
)

var (
	listFavorites bool
	listJSON      bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the bookmark tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		list := a.mgr.List()
		nodes := list.TopLevel
		if listFavorites {
			nodes = list.Favorites
		}

		if listJSON {
			data, err := json.MarshalIndent(nodes, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		if len(nodes) == 0 {
			fmt.Println("No bookmarks.")
			return nil
		}
		printTree(os.Stdout, nodes, 0)

		if at, source, err := importer.LastImport(ctx, a.store); err == nil && !at.IsZero() {
			fmt.Printf("\nLast import: %s from %s\n", at.Local().Format(time.DateTime), source)
		}
		return nil
	},
}

func printTree(w io.Writer, nodes []db.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch n := n.(type) {
		case db.Folder:
			fmt.Fprintf(w, "%s[+] %s  (%s)\n", indent, n.Title, n.ID)
			printTree(w, n.Children, depth+1)
		case db.Bookmark:
			star := "   "
			if n.IsFavorite {
				star = "[*]"
			}
			fmt.Fprintf(w, "%s%s %s  %s  (%s)\n", indent, star, n.Title, n.URL, n.ID)
		}
	}
}

func init() {
	listCmd.Flags().BoolVarP(&listFavorites, "favorites", "f", false, "List favorites only")
	listCmd.Flags().BoolVarP(&listJSON, "json", "j", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}
