package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

var (
	indexCollection string
	indexReset      bool
)

var indexCmd = &cobra.Command{
	Use:   "index [pdf]",
	Short: "Build the retrieval index for a PDF",
	Long: `Extracts the PDF text and indexes it into the named collection
without running the generation pipeline. Re-indexing identical text is
a no-op; use --reset to purge stale chunks first.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexCollection, "collection", "c", "", "collection name (default: derived from file name)")
	indexCmd.Flags().BoolVar(&indexReset, "reset", false, "reset the collection before indexing")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	collection := indexCollection
	if collection == "" {
		name := filepath.Base(args[0])
		collection = domain.DeriveSlug(strings.TrimSuffix(name, filepath.Ext(name)))
	}

	count, err := indexService.Index(cmd.Context(), args[0], collection, indexReset)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks into %q\n", count, collection)
	return nil
}
