package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

// --- Mock services ---

type mockPipeline struct {
	run     domain.PipelineRun
	err     error
	lastOpt domain.RunOptions
}

func (m *mockPipeline) Run(_ context.Context, opts domain.RunOptions) (domain.PipelineRun, error) {
	m.lastOpt = opts
	return m.run, m.err
}

type mockIndexer struct {
	count          int
	err            error
	lastCollection string
	lastReset      bool
}

func (m *mockIndexer) Index(_ context.Context, _, collection string, reset bool) (int, error) {
	m.lastCollection = collection
	m.lastReset = reset
	return m.count, m.err
}

func (m *mockIndexer) Count(_ context.Context, _ string) (int, error) {
	return m.count, m.err
}

type mockRetriever struct {
	result domain.RetrievalResult
	err    error
}

func (m *mockRetriever) Search(_ context.Context, _ string, _ int, _ string) (domain.RetrievalResult, error) {
	return m.result, m.err
}

type mockLedger struct {
	runs []domain.PipelineRun
	err  error
}

func (m *mockLedger) CreateRun(_ context.Context, _ domain.PipelineRun) error { return nil }

func (m *mockLedger) RecordStage(_ context.Context, _ string, _ domain.StageArtifact) error {
	return nil
}

func (m *mockLedger) CompleteRun(_ context.Context, _ string, _ domain.RunStatus, _, _ string) error {
	return nil
}

func (m *mockLedger) GetRun(_ context.Context, id string) (domain.PipelineRun, error) {
	if m.err != nil {
		return domain.PipelineRun{}, m.err
	}
	for _, run := range m.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return domain.PipelineRun{}, domain.ErrNotFound
}

func (m *mockLedger) ListRuns(_ context.Context, limit int) ([]domain.PipelineRun, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *mockLedger) Close() error { return nil }

// injectServices replaces the wired services with mocks for the test
// duration so command execution never touches real backends.
func injectServices(t *testing.T, pipeline *mockPipeline, indexer *mockIndexer, retriever *mockRetriever, ledger *mockLedger) {
	t.Helper()

	pipelineService = pipeline
	indexService = indexer
	retrievalService = retriever
	if ledger != nil {
		runStore = ledger
	}

	t.Cleanup(func() {
		pipelineService = nil
		indexService = nil
		retrievalService = nil
		runStore = nil
	})
}

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func completedRun() domain.PipelineRun {
	return domain.PipelineRun{
		ID:         "run-42",
		DocumentID: "sample",
		Source:     "/papers/sample.pdf",
		Collection: "sample",
		Status:     domain.RunCompleted,
		Artifacts: []domain.StageArtifact{
			{Stage: "plan", Kind: domain.KindYAML, Status: domain.StageOK, Path: "out/sample-plan.yaml"},
			{Stage: "facts", Kind: domain.KindJSON, Status: domain.StageRecovered, Path: "out/sample-facts.json"},
		},
		FinalPath: "out/sample.md",
		StartedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

var errBackendDown = errors.New("backend down")
