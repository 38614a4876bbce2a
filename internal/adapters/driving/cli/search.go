package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

var (
	searchCollection string
	searchTopK       int
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query an indexed collection",
	Long: `Runs an ad-hoc similarity query against an indexed collection and
prints the matching passages. A missing or empty collection yields no
results, not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCollection, "collection", "c", "", "collection name (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 4, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchCollection == "" {
		return fmt.Errorf("--collection is required")
	}
	if err := ensureServices(); err != nil {
		return err
	}

	result, err := retrievalService.Search(cmd.Context(), args[0], searchTopK, searchCollection)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputSnippets(cmd, result.Snippets)
}

func outputSnippets(cmd *cobra.Command, snippets []domain.Snippet) error {
	if len(snippets) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, snippet := range snippets {
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, snippet.Source, snippet.Position, snippet.Score)
		cmd.Printf("      %s\n", snippet.Text)
		cmd.Println()
	}
	return nil
}
