package cli

import (
	"fmt"
	"os"
	"path/filepath"

	configfile "github.com/litpress/litpress-cli/internal/adapters/driven/config/file"
	ollamaembed "github.com/litpress/litpress-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/litpress/litpress-cli/internal/adapters/driven/embedding/openai"
	"github.com/litpress/litpress-cli/internal/adapters/driven/extractor/pdf"
	anthropicllm "github.com/litpress/litpress-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/litpress/litpress-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/litpress/litpress-cli/internal/adapters/driven/llm/openai"
	"github.com/litpress/litpress-cli/internal/adapters/driven/storage/sqlite"
	"github.com/litpress/litpress-cli/internal/adapters/driven/vector/chromem"
	"github.com/litpress/litpress-cli/internal/core/ports/driven"
	"github.com/litpress/litpress-cli/internal/core/ports/driving"
	"github.com/litpress/litpress-cli/internal/core/services"
	"github.com/litpress/litpress-cli/internal/logger"
)

// Services are package-level so commands share one wired instance and
// tests can inject mocks directly.
var (
	pipelineService  driving.PipelineService
	indexService     driving.IndexService
	retrievalService driving.RetrievalService
	runStore         driven.RunStore

	closers []func() error
)

// ensureServices wires the full service graph from configuration.
// Idempotent; tests that pre-populate the service vars skip wiring.
func ensureServices() error {
	if pipelineService != nil {
		return nil
	}

	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	dataDir := cfg.GetString("storage.data_dir")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".litpress", "data")
	}
	persistPath := filepath.Join(dataDir, "index")
	cachePath := filepath.Join(dataDir, "document.txt")

	embedding, err := newEmbeddingService(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, embedding.Close)

	llm, err := newLLMService(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, llm.Close)

	vectorStore, err := chromem.NewStore(chromem.Config{
		EmbeddingFunc: chromem.EmbeddingFuncFromService(embedding),
		ChunkSize:     cfg.GetInt("index.chunk_size"),
	})
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	closers = append(closers, vectorStore.Close)

	prompts, err := configfile.NewPromptStore(cfg.GetString("prompts.dir"))
	if err != nil {
		return fmt.Errorf("creating prompt store: %w", err)
	}

	ledger, err := sqlite.NewStore(dataDir)
	if err != nil {
		// The ledger is bookkeeping; generation still works without it.
		logger.Warn("Run ledger unavailable: %v", err)
	} else {
		runStore = ledger
		closers = append(closers, ledger.Close)
	}

	indexer := services.NewIndexService(pdf.New(), vectorStore, persistPath, cachePath)
	retriever := services.NewRetrievalService(vectorStore, persistPath, cachePath)

	indexService = indexer
	retrievalService = retriever
	pipelineService = services.NewPipelineService(llm, prompts, indexer, retriever, runStore)

	return nil
}

// newLLMService selects the generation backend from llm.provider:
// anthropic, openai or ollama (default).
func newLLMService(cfg driven.ConfigStore) (driven.LLMService, error) {
	provider := cfg.GetString("llm.provider")
	switch provider {
	case "anthropic":
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey: apiKey(cfg, "llm.api_key", "ANTHROPIC_API_KEY"),
			Model:  cfg.GetString("llm.model"),
		})
	case "openai":
		return openaillm.NewLLMService(openaillm.Config{
			APIKey: apiKey(cfg, "llm.api_key", "OPENAI_API_KEY"),
			Model:  cfg.GetString("llm.model"),
		})
	case "", "ollama":
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

// newEmbeddingService selects the embedding backend from
// embedding.provider: openai or ollama (default).
func newEmbeddingService(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := cfg.GetString("embedding.provider")
	switch provider {
	case "openai":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey: apiKey(cfg, "embedding.api_key", "OPENAI_API_KEY"),
			Model:  cfg.GetString("embedding.model"),
		})
	case "", "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// apiKey reads a credential from config, falling back to the
// conventional environment variable.
func apiKey(cfg driven.ConfigStore, configKey, envVar string) string {
	if key := cfg.GetString(configKey); key != "" {
		return key
	}
	return os.Getenv(envVar)
}

func closeServices() {
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Debug("Close failed: %v", err)
		}
	}
	closers = nil
}
