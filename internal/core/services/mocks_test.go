package services

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// fakeEmbedder produces deterministic vectors derived from the text, so
// identical text embeds identically and similarity ranking is stable.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	errs  []error // consumed one per call, nil entries succeed
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func (f *fakeEmbedder) nextErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func embedText(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	sum := h.Sum32()
	return []float32{
		float32(sum&0xff) + 1,
		float32((sum>>8)&0xff) + 1,
		float32((sum>>16)&0xff) + 1,
		float32((sum>>24)&0xff) + 1,
	}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return embedText(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = embedText(text)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int            { return 4 }
func (f *fakeEmbedder) ModelName() string          { return "fake-embed" }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error               { return nil }

// fakeLLM returns canned responses and records prompts.
type fakeLLM struct {
	mu        sync.Mutex
	response  string
	streamOut []string
	err       error
	budget    int
	prompts   []string
}

var _ driven.LLMService = (*fakeLLM)(nil)

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) GenerateStream(
	ctx context.Context,
	prompt string,
	opts driven.GenerateOptions,
) (<-chan domain.AnswerFragment, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	out := make(chan domain.AnswerFragment)
	go func() {
		defer close(out)
		for _, text := range f.streamOut {
			select {
			case out <- domain.AnswerFragment{Text: text}:
			case <-ctx.Done():
				out <- domain.AnswerFragment{Err: ctx.Err()}
				return
			}
		}
	}()
	return out, nil
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeLLM) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) ContextBudget() int {
	if f.budget > 0 {
		return f.budget
	}
	return 12000
}

func (f *fakeLLM) ModelName() string          { return "fake-llm" }
func (f *fakeLLM) Ping(context.Context) error { return nil }
func (f *fakeLLM) Close() error               { return nil }
