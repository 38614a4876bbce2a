package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litpress/litpress-cli/internal/core/domain"
	"github.com/litpress/litpress-cli/internal/core/ports/driven"
)

// mockLLM implements driven.LLMService, replaying scripted responses
// in call order.
type mockLLM struct {
	responses []string
	prompts   []string
	errAt     int // 1-based call index that fails; 0 = never
	calls     int
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.errAt > 0 && m.calls == m.errAt {
		return "", errors.New("service unavailable")
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	response := m.responses[0]
	m.responses = m.responses[1:]
	return response, nil
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockExtractor implements driven.Extractor.
type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) ExtractText(_ context.Context, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

// mockPromptStore returns minimal templates with the same placeholder
// arity as the real defaults.
type mockPromptStore struct{}

func (m *mockPromptStore) Load(name string) (string, error) {
	templates := map[string]string{
		driven.PromptPlan:     "PLAN topic=%s",
		driven.PromptResearch: "RESEARCH topic=%s context=%s",
		driven.PromptDraft:    "DRAFT plan=%s notes=%s",
		driven.PromptFacts:    "FACTS draft=%s context=%s",
		driven.PromptSEO:      "SEO draft=%s",
	}
	tpl, ok := templates[name]
	if !ok {
		return "", errors.New("unknown prompt " + name)
	}
	return tpl, nil
}

func (m *mockPromptStore) Reload() {}

// mockRunStore records ledger calls.
type mockRunStore struct {
	created   []domain.PipelineRun
	stages    []domain.StageArtifact
	completed []domain.RunStatus
}

func (m *mockRunStore) CreateRun(_ context.Context, run domain.PipelineRun) error {
	m.created = append(m.created, run)
	return nil
}

func (m *mockRunStore) RecordStage(_ context.Context, _ string, artifact domain.StageArtifact) error {
	m.stages = append(m.stages, artifact)
	return nil
}

func (m *mockRunStore) CompleteRun(_ context.Context, _ string, status domain.RunStatus, _, _ string) error {
	m.completed = append(m.completed, status)
	return nil
}

func (m *mockRunStore) GetRun(_ context.Context, _ string) (domain.PipelineRun, error) {
	return domain.PipelineRun{}, domain.ErrNotFound
}

func (m *mockRunStore) ListRuns(_ context.Context, _ int) ([]domain.PipelineRun, error) {
	return nil, nil
}

func (m *mockRunStore) Close() error { return nil }

// --- Fixtures ---

const extractedDoc = "[p.1]\nIntroduction text.\n\n[p.2]\nMethod details.\n\n[p.3]\nResults and findings."

func stubResponses() []string {
	return []string{
		"angle: deep dive\naudience: engineers\nintent: informational\nentities: []\noutline:\n  - Introduction\n  - Results",
		"## Notes\n\n- Claim one [p.1]\n- Result two [p.3]",
		"# Test Post\n\n## Introduction\n\nArticle body with citation [p.2].",
		`[{"claim": "Claim one", "status": "supported", "sources": ["p.1"]}]`,
		`{"title": "Test Post", "slug": "test-post", "meta_description": "A test.", "tags": ["a", "b"]}`,
	}
}

func newTestPipeline(t *testing.T, llm *mockLLM, store *mockVectorStore, runs driven.RunStore) (*PipelineService, string) {
	t.Helper()

	dataDir := t.TempDir()
	cachePath := filepath.Join(dataDir, "document.txt")
	indexer := NewIndexService(&mockExtractor{text: extractedDoc}, store, dataDir, cachePath)
	retriever := NewRetrievalService(store, dataDir, cachePath)

	svc := NewPipelineService(llm, &mockPromptStore{}, indexer, retriever, runs)
	svc.assembler = fixedClockAssembler()

	return svc, t.TempDir()
}

func TestPipeline_EndToEnd(t *testing.T) {
	llm := &mockLLM{responses: stubResponses()}
	runs := &mockRunStore{}
	svc, outDir := newTestPipeline(t, llm, newMockVectorStore(), runs)

	run, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/sample.pdf",
		Topic:      "sample topic",
		OutputDir:  outDir,
		TopK:       3,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Equal(t, "sample", run.DocumentID)
	require.Len(t, run.Artifacts, 5)

	final, err := os.ReadFile(filepath.Join(outDir, "sample.md"))
	require.NoError(t, err)

	doc := string(final)
	assert.Contains(t, doc, "slug: test-post\n")
	assert.Contains(t, doc, "tags: [a, b]\n")
	assert.Contains(t, doc, "# Test Post\n\n## Introduction\n\nArticle body with citation [p.2].")

	// Ledger saw the full lifecycle.
	require.Len(t, runs.created, 1)
	assert.Len(t, runs.stages, 5)
	assert.Equal(t, []domain.RunStatus{domain.RunCompleted}, runs.completed)
}

func TestPipeline_StageArtifactsPersisted(t *testing.T) {
	llm := &mockLLM{responses: stubResponses()}
	svc, outDir := newTestPipeline(t, llm, newMockVectorStore(), nil)

	run, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/sample.pdf",
		OutputDir:  outDir,
	})
	require.NoError(t, err)

	expected := map[string]string{
		"plan":     "sample-plan.yaml",
		"research": "sample-research.md",
		"draft":    "sample-draft.md",
		"facts":    "sample-facts.json",
		"seo":      "sample-seo.json",
	}
	require.Len(t, run.Artifacts, len(expected))
	for _, artifact := range run.Artifacts {
		assert.Equal(t, filepath.Join(outDir, expected[artifact.Stage]), artifact.Path)
		assert.FileExists(t, artifact.Path)
		assert.Equal(t, domain.StageOK, artifact.Status)
	}
}

func TestPipeline_StagesRunInFixedOrder(t *testing.T) {
	llm := &mockLLM{responses: stubResponses()}
	svc, outDir := newTestPipeline(t, llm, newMockVectorStore(), nil)

	run, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/sample.pdf",
		OutputDir:  outDir,
	})
	require.NoError(t, err)

	var order []string
	for _, artifact := range run.Artifacts {
		order = append(order, artifact.Stage)
	}
	assert.Equal(t, []string{"plan", "research", "draft", "facts", "seo"}, order)
}

func TestPipeline_UpstreamArtifactsFlowDownstream(t *testing.T) {
	llm := &mockLLM{responses: stubResponses()}
	svc, outDir := newTestPipeline(t, llm, newMockVectorStore(), nil)

	_, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/sample.pdf",
		Topic:      "sample topic",
		OutputDir:  outDir,
	})
	require.NoError(t, err)

	require.Len(t, llm.prompts, 5)
	// Writer receives the plan and the research notes.
	assert.Contains(t, llm.prompts[2], "angle: deep dive")
	assert.Contains(t, llm.prompts[2], "Claim one [p.1]")
	// Fact checker and SEO editor receive the draft.
	assert.Contains(t, llm.prompts[3], "Article body with citation [p.2]")
	assert.Contains(t, llm.prompts[4], "Article body with citation [p.2]")
	// Researcher gets retrieved context, not the raw topic alone.
	assert.Contains(t, llm.prompts[1], "### Claims")
}

func TestPipeline_YAMLRecovery(t *testing.T) {
	responses := stubResponses()
	responses[0] = "::: not yaml at all\n\t- broken"
	llm := &mockLLM{responses: responses}
	svc, outDir := newTestPipeline(t, llm, newMockVectorStore(), nil)

	run, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/sample.pdf",
		OutputDir:  outDir,
	})
	require.NoError(t, err)

	plan := run.Artifacts[0]
	assert.Equal(t, domain.StageRecovered, plan.Status)
	assert.True(t, strings.HasPrefix(plan.Text, "# yaml validation failed; raw output kept\n"))
	assert.Contains(t, plan.Text, "::: not yaml at all")
	assert.Equal(t, domain.RunCompleted, run.Status)
}

func TestPipeline_JSONRecovery(t *testing.T) {
	responses := stubResponses()
	responses[3] = "Sure! Here are the validated claims: [broken"
	llm := &mockLLM{responses: responses}
	svc, outDir := newTestPipeline(t, llm, newMockVectorStore(), nil)

	run, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/sample.pdf",
		OutputDir:  outDir,
	})
	require.NoError(t, err)

	facts := run.Artifacts[3]
	assert.Equal(t, domain.StageRecovered, facts.Status)

	var fallback map[string]string
	require.NoError(t, json.Unmarshal([]byte(facts.Text), &fallback))
	assert.Equal(t, "invalid json from fact checker", fallback["error"])
	assert.Contains(t, fallback["raw"], "[broken")
}

func TestPipeline_FencedJSONAccepted(t *testing.T) {
	responses := stubResponses()
	responses[4] = "```json\n{\"title\": \"Fenced Title\"}\n```"
	llm := &mockLLM{responses: responses}
	svc, outDir := newTestPipeline(t, llm, newMockVectorStore(), nil)

	run, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/sample.pdf",
		OutputDir:  outDir,
	})
	require.NoError(t, err)

	seo := run.Artifacts[4]
	assert.Equal(t, domain.StageOK, seo.Status)
	assert.JSONEq(t, `{"title": "Fenced Title"}`, seo.Text)
}

func TestPipeline_GenerationFailureIsFatal(t *testing.T) {
	llm := &mockLLM{responses: stubResponses(), errAt: 3}
	runs := &mockRunStore{}
	svc, outDir := newTestPipeline(t, llm, newMockVectorStore(), runs)

	run, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/sample.pdf",
		OutputDir:  outDir,
	})
	require.Error(t, err)

	assert.Contains(t, err.Error(), `stage "draft"`)
	assert.Equal(t, domain.RunFailed, run.Status)
	assert.Equal(t, 3, llm.calls)
	assert.Equal(t, []domain.RunStatus{domain.RunFailed}, runs.completed)
	assert.NoFileExists(t, filepath.Join(outDir, "sample.md"))
}

func TestPipeline_ExtractionFailureAbortsBeforeIndexing(t *testing.T) {
	store := newMockVectorStore()
	llm := &mockLLM{responses: stubResponses()}
	svc, outDir := newTestPipeline(t, llm, store, nil)
	svc.indexer.extractor = &mockExtractor{err: domain.ErrExtractionFailed}

	run, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/corrupt.pdf",
		OutputDir:  outDir,
	})
	require.ErrorIs(t, err, domain.ErrExtractionFailed)

	assert.Equal(t, domain.RunFailed, run.Status)
	assert.Zero(t, store.buildCnt)
	assert.Zero(t, llm.calls)
}

func TestPipeline_ResetIndexPurgesCollection(t *testing.T) {
	store := newMockVectorStore()
	store.matches["sample"] = []driven.VectorMatch{{ChunkID: "stale", Content: "old doc"}}
	llm := &mockLLM{responses: stubResponses()}
	svc, outDir := newTestPipeline(t, llm, store, nil)

	_, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/sample.pdf",
		OutputDir:  outDir,
		ResetIndex: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"sample"}, store.resets)
	assert.Equal(t, extractedDoc, store.built["sample"])
}

func TestPipeline_MissingSourcePath(t *testing.T) {
	llm := &mockLLM{}
	svc, _ := newTestPipeline(t, llm, newMockVectorStore(), nil)

	_, err := svc.Run(context.Background(), domain.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPipeline_DefaultsDerivedFromSource(t *testing.T) {
	llm := &mockLLM{responses: stubResponses()}
	svc, outDir := newTestPipeline(t, llm, newMockVectorStore(), nil)

	run, err := svc.Run(context.Background(), domain.RunOptions{
		SourcePath: "/papers/My Paper (v2).pdf",
		OutputDir:  outDir,
	})
	require.NoError(t, err)

	assert.Equal(t, "my-paper-v2", run.DocumentID)
	assert.Equal(t, "my-paper-v2", run.Collection)
	assert.FileExists(t, filepath.Join(outDir, "my-paper-v2-plan.yaml"))
}
