package driven

import (
	"context"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

// RunStore records pipeline runs and their per-stage outcomes.
// The ledger makes degraded stages (recovered or failed) visible after
// the fact without re-running the pipeline.
type RunStore interface {
	// CreateRun records the start of a new pipeline run.
	CreateRun(ctx context.Context, run domain.PipelineRun) error

	// RecordStage appends a stage outcome to an existing run.
	RecordStage(ctx context.Context, runID string, artifact domain.StageArtifact) error

	// CompleteRun finalises a run with its status, final document path
	// and, for failed runs, the failure reason.
	CompleteRun(ctx context.Context, runID string, status domain.RunStatus, finalPath, errMsg string) error

	// GetRun returns a run with its recorded stages.
	// Returns domain.ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, runID string) (domain.PipelineRun, error)

	// ListRuns returns runs ordered most recent first.
	ListRuns(ctx context.Context, limit int) ([]domain.PipelineRun, error)

	// Close releases resources.
	Close() error
}
