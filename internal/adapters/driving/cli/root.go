// Package cli implements the command-line interface, the driving
// adapter that wires core services to cobra commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/litpress/litpress-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "litpress",
	Short: "Turn a PDF into a publishable SEO article",
	Long: `litpress converts a source PDF into a publishable, SEO-annotated
article: it extracts the text, builds a retrieval index, runs a fixed
sequence of LLM stages (plan, research, draft, fact check, SEO) and
assembles the final document with front matter and structured data.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}
