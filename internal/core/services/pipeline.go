package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/litpress/litpress-cli/internal/core/domain"
	"github.com/litpress/litpress-cli/internal/core/ports/driven"
	"github.com/litpress/litpress-cli/internal/core/ports/driving"
	"github.com/litpress/litpress-cli/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

// yamlRecoveryComment marks a plan artifact whose YAML failed to parse.
const yamlRecoveryComment = "# yaml validation failed; raw output kept"

// PipelineService drives the generation pipeline: Indexing, then the
// fixed stage sequence, then Assembling. Strictly sequential; each
// stage receives the prior artifacts it declares, even when those are
// empty or malformed.
type PipelineService struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	indexer   *IndexService
	retriever *RetrievalService
	runs      driven.RunStore
	assembler *Assembler
}

// NewPipelineService creates a new pipeline service.
// The run store is optional (can be nil); without it runs are simply
// not recorded in the ledger.
func NewPipelineService(
	llm driven.LLMService,
	prompts driven.PromptStore,
	indexer *IndexService,
	retriever *RetrievalService,
	runs driven.RunStore,
) *PipelineService {
	return &PipelineService{
		llm:       llm,
		prompts:   prompts,
		indexer:   indexer,
		retriever: retriever,
		runs:      runs,
		assembler: NewAssembler(),
	}
}

// Run executes one full pipeline run over the source document.
func (s *PipelineService) Run(ctx context.Context, opts domain.RunOptions) (domain.PipelineRun, error) {
	if strings.TrimSpace(opts.SourcePath) == "" {
		return domain.PipelineRun{}, fmt.Errorf("source path is required: %w", domain.ErrInvalidInput)
	}
	opts = withDefaults(opts)
	docSlug := domain.DeriveSlug(baseName(opts.SourcePath))

	run := domain.PipelineRun{
		ID:         uuid.NewString(),
		DocumentID: docSlug,
		Source:     opts.SourcePath,
		Collection: opts.Collection,
		Status:     domain.RunRunning,
		StartedAt:  time.Now(),
	}
	s.recordCreate(ctx, run)

	if err := os.MkdirAll(opts.OutputDir, 0700); err != nil {
		return s.fail(ctx, run, fmt.Errorf("creating output directory: %w", err))
	}

	// Indexing: build once from the full document text before any
	// stage runs.
	text, err := s.indexer.ExtractAndCache(ctx, opts.SourcePath)
	if err != nil {
		return s.fail(ctx, run, err)
	}
	if _, err := s.indexer.BuildFromText(ctx, text, opts.Collection, opts.ResetIndex); err != nil {
		return s.fail(ctx, run, err)
	}

	artifacts := make(map[string]string)
	for _, stage := range Stages() {
		artifact, err := s.runStage(ctx, stage, opts, docSlug, artifacts)
		if err != nil {
			s.recordStage(ctx, run.ID, artifact)
			run.Artifacts = append(run.Artifacts, artifact)
			return s.fail(ctx, run, fmt.Errorf("stage %q: %w", stage.ID, err))
		}

		s.recordStage(ctx, run.ID, artifact)
		run.Artifacts = append(run.Artifacts, artifact)
		artifacts[stage.ID] = artifact.Text
	}

	logger.Section("Assembling")
	final, meta := s.assembler.Assemble(artifacts["draft"], artifacts["seo"])
	finalPath := filepath.Join(opts.OutputDir, docSlug+".md")
	if err := os.WriteFile(finalPath, []byte(final), 0600); err != nil {
		return s.fail(ctx, run, fmt.Errorf("writing final document: %w", err))
	}
	logger.Info("Assembled %q (%s)", meta.Title, finalPath)

	run.Status = domain.RunCompleted
	run.FinalPath = finalPath
	run.CompletedAt = time.Now()
	s.recordComplete(ctx, run)

	return run, nil
}

// runStage assembles the stage prompt, issues the single generation
// call and persists the raw artifact. Structured stages go through
// parse-and-recover before persisting, so downstream consumers always
// receive something parseable.
func (s *PipelineService) runStage(
	ctx context.Context, stage Stage, opts domain.RunOptions, docSlug string, artifacts map[string]string,
) (domain.StageArtifact, error) {
	logger.Section(fmt.Sprintf("Stage: %s (%s)", stage.ID, stage.Role))

	artifact := domain.StageArtifact{Stage: stage.ID, Kind: stage.Kind, Status: domain.StageFailed}

	prompt, err := s.buildPrompt(ctx, stage, opts, artifacts)
	if err != nil {
		return artifact, err
	}

	raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   stage.MaxTokens,
		Temperature: stage.Temperature,
	})
	if err != nil {
		return artifact, fmt.Errorf("generation failed: %w", err)
	}

	artifact.Text, artifact.Status = recoverStructured(stage, raw)
	if artifact.Status == domain.StageRecovered {
		logger.Warn("Stage %q output failed to parse as %s; fallback substituted", stage.ID, stage.Kind)
	}

	artifact.Path = filepath.Join(opts.OutputDir, docSlug+"-"+stage.ID+stage.Kind.Ext())
	if err := os.WriteFile(artifact.Path, []byte(artifact.Text), 0600); err != nil {
		return artifact, fmt.Errorf("writing artifact: %w", err)
	}
	logger.Debug("Artifact written: %s", artifact.Path)

	return artifact, nil
}

// buildPrompt renders the stage template with its declared inputs.
// A missing upstream artifact resolves to the empty string, never nil:
// garbage in, garbage out is explicit here, not hidden.
func (s *PipelineService) buildPrompt(
	ctx context.Context, stage Stage, opts domain.RunOptions, artifacts map[string]string,
) (string, error) {
	template, err := s.prompts.Load(stage.PromptName)
	if err != nil {
		return "", fmt.Errorf("loading prompt %q: %w", stage.PromptName, err)
	}

	args := make([]any, 0, len(stage.Inputs))
	for _, input := range stage.Inputs {
		switch input {
		case InputTopic:
			args = append(args, opts.Topic)
		case InputContext:
			args = append(args, s.contextBlock(ctx, stage, opts, artifacts))
		default:
			args = append(args, artifacts[input])
		}
	}
	return fmt.Sprintf(template, args...), nil
}

// contextBlock runs the stage's retrieval sub-queries and merges the
// results into one delimited block, one section per sub-query.
func (s *PipelineService) contextBlock(
	ctx context.Context, stage Stage, opts domain.RunOptions, artifacts map[string]string,
) string {
	if stage.Queries == nil {
		return ""
	}

	var sections []string
	for _, query := range stage.Queries(opts.Topic, artifacts) {
		result, err := s.retriever.Search(ctx, query.Query, opts.TopK, opts.Collection)
		if err != nil || len(result.Snippets) == 0 {
			continue
		}

		texts := make([]string, 0, len(result.Snippets))
		for _, snippet := range result.Snippets {
			texts = append(texts, snippet.Text)
		}
		sections = append(sections, fmt.Sprintf("### %s\n\n%s", query.Label, strings.Join(texts, "\n\n")))
	}

	if len(sections) == 0 {
		return "(no source passages retrieved)"
	}
	return strings.Join(sections, "\n\n---\n\n")
}

// recoverStructured validates structured stage output and substitutes
// a clearly marked fallback on parse failure. Prose stages pass
// through verbatim.
func recoverStructured(stage Stage, raw string) (string, domain.StageStatus) {
	switch stage.Kind {
	case domain.KindYAML:
		stripped := stripOuterFence(raw)
		var doc map[string]any
		if err := yaml.Unmarshal([]byte(stripped), &doc); err == nil && doc != nil {
			return stripped, domain.StageOK
		}
		return yamlRecoveryComment + "\n" + raw, domain.StageRecovered

	case domain.KindJSON:
		stripped := strings.TrimSpace(stripOuterFence(raw))
		if json.Valid([]byte(stripped)) && stripped != "" {
			return stripped, domain.StageOK
		}
		fallback, _ := json.Marshal(map[string]string{
			"error": "invalid json from " + strings.ToLower(stage.Role),
			"raw":   raw,
		})
		return string(fallback), domain.StageRecovered

	default:
		return raw, domain.StageOK
	}
}

func (s *PipelineService) fail(ctx context.Context, run domain.PipelineRun, err error) (domain.PipelineRun, error) {
	run.Status = domain.RunFailed
	run.Error = err.Error()
	run.CompletedAt = time.Now()
	s.recordComplete(ctx, run)
	return run, err
}

// Ledger writes are best effort: a broken ledger must not abort a
// generation run that is otherwise healthy.
func (s *PipelineService) recordCreate(ctx context.Context, run domain.PipelineRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		logger.Warn("Cannot record run %s: %v", run.ID, err)
	}
}

func (s *PipelineService) recordStage(ctx context.Context, runID string, artifact domain.StageArtifact) {
	if s.runs == nil {
		return
	}
	if err := s.runs.RecordStage(ctx, runID, artifact); err != nil {
		logger.Warn("Cannot record stage %q: %v", artifact.Stage, err)
	}
}

func (s *PipelineService) recordComplete(ctx context.Context, run domain.PipelineRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.CompleteRun(ctx, run.ID, run.Status, run.FinalPath, run.Error); err != nil {
		logger.Warn("Cannot complete run %s: %v", run.ID, err)
	}
}

func withDefaults(opts domain.RunOptions) domain.RunOptions {
	base := baseName(opts.SourcePath)
	if opts.Topic == "" {
		opts.Topic = base
	}
	if opts.Collection == "" {
		opts.Collection = domain.DeriveSlug(base)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	return opts
}

// baseName returns the file name without directory or extension.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
