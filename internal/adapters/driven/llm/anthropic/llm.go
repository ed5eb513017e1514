// Package anthropic provides an LLM service adapter using the
// Anthropic messages API.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	// DefaultContextBudget is the approximate input size in characters
	// fed to the model in one call.
	DefaultContextBudget = 12000

	// finalEmitTimeout bounds the delivery of the terminal fragment to a
	// consumer that may already have walked away.
	finalEmitTimeout = 100 * time.Millisecond

	apiVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com/v1).
	BaseURL string

	// Model is the model to use (default: claude-3-5-haiku-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// ContextBudget is the approximate input character budget.
	ContextBudget int
}

// LLMService provides LLM operations using the Anthropic API.
type LLMService struct {
	client        *http.Client
	baseURL       string
	apiKey        string
	model         string
	contextBudget int
}

// messagesRequest is the Anthropic /messages request format.
type messagesRequest struct {
	Model         string       `json:"model"`
	Messages      []messageMsg `json:"messages"`
	MaxTokens     int          `json:"max_tokens"`
	Temperature   float64      `json:"temperature,omitempty"`
	StopSequences []string     `json:"stop_sequences,omitempty"`
	Stream        bool         `json:"stream,omitempty"`
}

// messageMsg is the Anthropic message format.
type messageMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string    `json:"stop_reason"`
	Error      *apiError `json:"error,omitempty"`
}

// streamEvent is one SSE event in a streaming response.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ContextBudget == 0 {
		cfg.ContextBudget = DefaultContextBudget
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		model:         cfg.Model,
		contextBudget: cfg.ContextBudget,
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req, err := s.newMessagesRequest(ctx, prompt, opts, false)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", mapStatusError(resp.StatusCode, body)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if msgResp.Error != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrProviderRejected, msgResp.Error.Message)
	}

	var text strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: no text content returned", domain.ErrGenerationFailure)
	}
	return text.String(), nil
}

// GenerateStream produces completion text as a sequence of fragments
// decoded from the SSE response.
func (s *LLMService) GenerateStream(
	ctx context.Context,
	prompt string,
	opts driven.GenerateOptions,
) (<-chan domain.AnswerFragment, error) {
	req, err := s.newMessagesRequest(ctx, prompt, opts, true)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, mapStatusError(resp.StatusCode, body)
	}

	out := make(chan domain.AnswerFragment)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			var event streamEvent
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
				s.emit(ctx, out, domain.AnswerFragment{
					Err: fmt.Errorf("%w: decoding stream event: %v", domain.ErrGenerationFailure, err),
				})
				return
			}

			switch event.Type {
			case "content_block_delta":
				if event.Delta.Text != "" {
					if !s.emit(ctx, out, domain.AnswerFragment{Text: event.Delta.Text}) {
						return
					}
				}
			case "error":
				message := "stream error"
				if event.Error != nil {
					message = event.Error.Message
				}
				s.emit(ctx, out, domain.AnswerFragment{
					Err: fmt.Errorf("%w: %s", domain.ErrGenerationFailure, message),
				})
				return
			case "message_stop":
				return
			}
		}

		if err := scanner.Err(); err != nil {
			if ctx.Err() != nil {
				s.emitFinal(out, domain.AnswerFragment{Err: ctx.Err()})
				return
			}
			s.emit(ctx, out, domain.AnswerFragment{
				Err: fmt.Errorf("%w: reading stream: %v", domain.ErrProviderUnavailable, err),
			})
		}
	}()

	return out, nil
}

// emit delivers a fragment unless the consumer has gone away.
func (s *LLMService) emit(ctx context.Context, out chan<- domain.AnswerFragment, f domain.AnswerFragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

// emitFinal makes a bounded attempt to deliver a terminal fragment after
// the context is already cancelled. A consumer that cancelled and stopped
// receiving must not pin this goroutine forever.
func (s *LLMService) emitFinal(out chan<- domain.AnswerFragment, f domain.AnswerFragment) {
	timer := time.NewTimer(finalEmitTimeout)
	defer timer.Stop()
	select {
	case out <- f:
	case <-timer.C:
	}
}

// newMessagesRequest builds a /messages request.
func (s *LLMService) newMessagesRequest(
	ctx context.Context,
	prompt string,
	opts driven.GenerateOptions,
	stream bool,
) (*http.Request, error) {
	reqBody := messagesRequest{
		Model: s.model,
		Messages: []messageMsg{
			{Role: "user", Content: prompt},
		},
		MaxTokens: DefaultMaxTokens,
		Stream:    stream,
	}
	if opts.MaxTokens > 0 {
		reqBody.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = opts.Temperature
	}
	if len(opts.StopWords) > 0 {
		reqBody.StopSequences = opts.StopWords
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	return req, nil
}

// mapStatusError maps an API error to the LLM error contract.
func mapStatusError(status int, body []byte) error {
	var errResp messagesResponse
	message := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		message = errResp.Error.Message
	}

	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: anthropic status %d: %s", domain.ErrProviderUnavailable, status, message)
	default:
		return fmt.Errorf("%w: anthropic status %d: %s", domain.ErrProviderRejected, status, message)
	}
}

// ContextBudget returns the approximate input character budget.
func (s *LLMService) ContextBudget() int {
	return s.contextBudget
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable with a minimal generation
// request. Anthropic has no listing endpoint that validates the key.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Generate(ctx, "ping", driven.GenerateOptions{MaxTokens: 1})
	if err != nil && !strings.Contains(err.Error(), "no text content") {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
