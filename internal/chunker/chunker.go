// Package chunker splits normalised text into fixed-size overlapping chunks.
package chunker

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/doclane/doclane/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// boundarySlack is the fraction of the chunk size a chunk end may back
// off to land on a word boundary.
const boundarySlack = 0.15

// Chunker splits document text into overlapping chunks with stable
// [start, end) rune offsets. Chunking is deterministic: identical text
// and parameters always yield the same sequence of offsets and contents.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must stay below chunk size or chunking cannot advance
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into an ordered chunk sequence covering the whole
// input with no gaps. Consecutive chunks overlap by at most the
// configured overlap; chunk ends back off to the previous word boundary
// within a small slack so words are not split mid-way.
//
// Fails with domain.ErrEmptyInput if text is empty or whitespace-only.
func (c *Chunker) Chunk(documentID, text string) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}

	runes := []rune(text)
	total := len(runes)

	estimated := total/(c.chunkSize-c.overlap) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	for seq := 0; start < total; seq++ {
		end := start + c.chunkSize
		if end >= total {
			end = total
		} else {
			end = c.adjustEnd(runes, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:          uuid.New().String(),
			DocumentID:  documentID,
			SeqIndex:    seq,
			StartOffset: start,
			EndOffset:   end,
			Content:     string(runes[start:end]),
		})

		if end == total {
			break
		}

		// The next chunk re-reads the last overlap characters, so the
		// sequence covers the text with no gaps.
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks, nil
}

// adjustEnd backs the chunk end off to just after the last space within
// the slack window. If the window contains no space the hard cut stands.
func (c *Chunker) adjustEnd(runes []rune, start, end int) int {
	slack := int(float64(c.chunkSize) * boundarySlack)
	limit := end - slack
	if limit <= start {
		limit = start + 1
	}

	for i := end - 1; i >= limit; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}

// ExpectedCount returns the boundary-unadjusted chunk count for a text
// length. Each chunk advances by (chunkSize - overlap) and the final
// chunk spans a full chunkSize, so for text longer than one chunk the
// count is ceil((length - chunkSize) / step) + 1. The actual count may
// differ slightly when ends back off to word boundaries.
func (c *Chunker) ExpectedCount(textLen int) int {
	if textLen <= c.chunkSize {
		return 1
	}
	step := c.chunkSize - c.overlap
	rest := textLen - c.chunkSize
	return (rest+step-1)/step + 1
}
