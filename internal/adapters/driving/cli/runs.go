package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded pipeline runs",
	Long:  `Lists past pipeline runs and their per-stage outcomes from the run ledger.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one run with its stage outcomes",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if runStore == nil {
		return errors.New("run ledger not available")
	}

	runs, err := runStore.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		cmd.Printf("%s  %-9s  %s  %s\n",
			run.ID, run.Status, run.StartedAt.Format("2006-01-02 15:04"), run.Source)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if runStore == nil {
		return errors.New("run ledger not available")
	}

	run, err := runStore.GetRun(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run %q not found", args[0])
		}
		return fmt.Errorf("loading run: %w", err)
	}

	cmd.Printf("Run:        %s\n", run.ID)
	cmd.Printf("Source:     %s\n", run.Source)
	cmd.Printf("Collection: %s\n", run.Collection)
	cmd.Printf("Status:     %s\n", run.Status)
	if run.Error != "" {
		cmd.Printf("Error:      %s\n", run.Error)
	}
	cmd.Println("Stages:")
	for _, artifact := range run.Artifacts {
		cmd.Printf("  %-9s %-10s %s\n", artifact.Stage, artifact.Status, artifact.Path)
	}
	if run.FinalPath != "" {
		cmd.Printf("Final:      %s\n", run.FinalPath)
	}
	return nil
}
