package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/bookmarks/internal/db"
)

var (
	jsonOutput      bool
	plaintextOutput bool
	searchLimit     int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search bookmarks",
	Long:  "Search bookmark titles and URLs. Every term must match.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.mgr.Search(cmd.Context(), query, searchLimit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if jsonOutput {
			return outputJSON(results)
		}
		if plaintextOutput {
			return outputPlaintext(results)
		}
		return outputDefault(results)
	},
}

func outputJSON(results []db.Bookmark) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputPlaintext(results []db.Bookmark) error {
	for _, r := range results {
		fmt.Printf("%s\t%s\t%s\n", r.ID, r.Title, r.URL)
	}
	return nil
}

func outputDefault(results []db.Bookmark) error {
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, r := range results {
		star := ""
		if r.IsFavorite {
			star = " [*]"
		}
		fmt.Printf("%d. %s%s\n   %s\n\n", i+1, truncate(r.Title, 100), star, r.URL)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func init() {
	searchCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	searchCmd.Flags().BoolVarP(&plaintextOutput, "plaintext", "p", false, "Output as plaintext")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
