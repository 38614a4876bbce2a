package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

var (
	generateTopic      string
	generateCollection string
	generateOut        string
	generateTopK       int
	generateReset      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [pdf]",
	Short: "Run the full article pipeline over a PDF",
	Long: `Extracts the PDF text, builds the retrieval index and runs the
plan, research, draft, fact-check and SEO stages, then assembles the
final document. Stage artifacts and the final article are written to
the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "article topic (default: source file name)")
	generateCmd.Flags().StringVarP(&generateCollection, "collection", "c", "", "index collection name (default: derived from file name)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "out", "output directory")
	generateCmd.Flags().IntVarP(&generateTopK, "top-k", "k", 4, "retrieval fan-out per sub-query")
	generateCmd.Flags().BoolVar(&generateReset, "reset-index", false, "reset the collection before indexing")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	run, err := pipelineService.Run(cmd.Context(), domain.RunOptions{
		SourcePath: args[0],
		Topic:      generateTopic,
		Collection: generateCollection,
		OutputDir:  generateOut,
		TopK:       generateTopK,
		ResetIndex: generateReset,
	})
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	cmd.Printf("Run %s completed\n", run.ID)
	for _, artifact := range run.Artifacts {
		marker := " "
		if artifact.Status == domain.StageRecovered {
			marker = "!"
		}
		cmd.Printf("  %s %-8s %s\n", marker, artifact.Stage, artifact.Path)
	}
	cmd.Printf("Final article: %s\n", run.FinalPath)

	return nil
}
