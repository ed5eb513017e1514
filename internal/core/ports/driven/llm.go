package driven

import (
	"context"

	"github.com/doclane/doclane/internal/core/domain"
)

// LLMService provides generative model operations for summarisation and
// question answering.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4o-mini)
//   - Anthropic (Claude)
//
// Error contract mirrors EmbeddingService: transient failures wrap
// domain.ErrProviderUnavailable, refusals wrap domain.ErrProviderRejected.
type LLMService interface {
	// Generate produces a complete text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStream produces completion text as a lazy, finite sequence
	// of fragments. The returned channel is closed when generation ends;
	// a mid-stream failure is delivered as a final fragment with Err set.
	// Cancelling ctx aborts the underlying provider call.
	GenerateStream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan domain.AnswerFragment, error)

	// ContextBudget returns the approximate input size in characters the
	// model accepts. Summarisation uses it to bound map-reduce passes.
	ContextBudget() int

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
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
