package driven

import "context"

// LLMService provides text generation for pipeline stages.
// The pipeline treats generation as an opaque (prompt) -> text function:
// a service error is propagated as-is and aborts the run at that stage.
// Retry policy, if any, belongs to the caller, not this core.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4, GPT-4o-mini)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
