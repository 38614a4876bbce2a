package domain

import "time"

// ArtifactKind declares the expected output format of a stage.
// It drives both the artifact file extension and structural recovery.
type ArtifactKind string

const (
	// KindYAML marks plan-like structured output (.yaml).
	KindYAML ArtifactKind = "yaml"

	// KindJSON marks fact/validation-like structured output (.json).
	KindJSON ArtifactKind = "json"

	// KindMarkdown marks prose output (.md).
	KindMarkdown ArtifactKind = "md"
)

// Ext returns the artifact file extension including the dot.
func (k ArtifactKind) Ext() string {
	switch k {
	case KindYAML:
		return ".yaml"
	case KindJSON:
		return ".json"
	default:
		return ".md"
	}
}

// Structured reports whether artifacts of this kind go through
// parse-and-recover handling in the orchestrator.
func (k ArtifactKind) Structured() bool {
	return k == KindYAML || k == KindJSON
}

// StageStatus describes how a stage completed.
type StageStatus string

const (
	// StageOK means the stage produced well-formed output.
	StageOK StageStatus = "ok"

	// StageRecovered means structured output failed to parse and a
	// fallback value was substituted. Non-fatal, recorded for review.
	StageRecovered StageStatus = "recovered"

	// StageFailed means the generation call itself failed. Fatal.
	StageFailed StageStatus = "failed"
)

// StageArtifact is the raw text produced by one pipeline stage.
// Artifacts are written to disk once and never mutated afterwards.
type StageArtifact struct {
	// Stage is the stage identifier (e.g. "plan", "draft").
	Stage string

	// Kind is the declared output format of the stage.
	Kind ArtifactKind

	// Text is the artifact content, after any structural recovery.
	Text string

	// Path is where the artifact was persisted.
	Path string

	// Status records whether recovery was applied.
	Status StageStatus
}

// RunStatus describes the overall outcome of a pipeline run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunOptions configures one pipeline run. All knobs the core consumes
// arrive here explicitly; services never read hidden global state.
type RunOptions struct {
	// SourcePath is the input document path (PDF).
	SourcePath string

	// Topic is the article topic handed to the planning stage.
	// Defaults to the source file name when empty.
	Topic string

	// Collection is the vector store collection name. Defaults to a
	// slug derived from the source file name.
	Collection string

	// OutputDir receives the stage artifacts and the final document.
	OutputDir string

	// TopK is the retrieval fan-out per sub-query.
	TopK int

	// ResetIndex removes the collection before indexing, purging any
	// stale chunks from a prior document that shared the name.
	ResetIndex bool
}

// PipelineRun is one execution of the pipeline over one source document.
type PipelineRun struct {
	// ID is the unique run identifier.
	ID string

	// DocumentID is the slug of the source document.
	DocumentID string

	// Source is the path of the input document.
	Source string

	// Collection is the vector store collection used for retrieval.
	Collection string

	// Status is the overall run outcome.
	Status RunStatus

	// Artifacts are the stage artifacts in execution order.
	Artifacts []StageArtifact

	// FinalPath is the assembled document path, set on completion.
	FinalPath string

	// Error holds the failure reason for failed runs.
	Error string

	StartedAt   time.Time
	CompletedAt time.Time
}
