package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
	"github.com/doclane/doclane/internal/core/ports/driving"
	"github.com/doclane/doclane/internal/retry"
)

// Ensure Summariser implements the interface.
var _ driving.SummaryService = (*Summariser)(nil)

// maxReducePasses bounds map-reduce recursion. Text still over budget
// after this many passes is truncated rather than reduced again.
const maxReducePasses = 3

// summarisePrompt asks for a delimited structure so the response can be
// parsed without a second model call.
const summarisePrompt = `Summarise the following document. Respond in exactly this format:

SUMMARY:
<two or three sentences capturing what the document is about>

KEY POINTS:
- <one key point per line>

PERSONAL INFO:
<names, contact details or identifiers found in the document, or "none">

Document:
%s`

// condensePrompt collapses one piece of an over-budget document during
// a map-reduce pass.
const condensePrompt = `Condense the following text to at most %d characters.
Preserve the facts, figures and names. Respond with the condensed text only.

Text:
%s`

// Summariser produces document summaries, reducing over-budget
// documents in multiple passes.
type Summariser struct {
	docs        driven.DocumentStore
	llm         driven.LLMService
	retryPolicy retry.Policy
}

// NewSummariser creates a new summariser.
func NewSummariser(docs driven.DocumentStore, llm driven.LLMService) *Summariser {
	return &Summariser{
		docs:        docs,
		llm:         llm,
		retryPolicy: retry.DefaultPolicy(),
	}
}

// Summarise generates and stores the summary for a ready document from
// its full chunk set.
func (s *Summariser) Summarise(ctx context.Context, documentID string) (*domain.Summary, error) {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc.Status != domain.StatusReady {
		return nil, fmt.Errorf("%w: document is %s", domain.ErrDocumentNotReady, doc.Status)
	}

	chunks, err := s.docs.GetChunks(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}

	summary, err := s.GenerateFromChunks(ctx, documentID, chunks)
	if err != nil {
		return nil, err
	}

	if err := s.docs.SaveSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}
	return summary, nil
}

// Get returns the stored summary.
func (s *Summariser) Get(ctx context.Context, documentID string) (*domain.Summary, error) {
	return s.docs.GetSummary(ctx, documentID)
}

// GenerateFromChunks produces a summary from an in-memory chunk set
// without persisting it. The ingestion pipeline calls this while the
// document is still processing.
func (s *Summariser) GenerateFromChunks(
	ctx context.Context,
	documentID string,
	chunks []domain.Chunk,
) (*domain.Summary, error) {
	text := JoinChunks(chunks)
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	condensed, err := s.fitToBudget(ctx, text)
	if err != nil {
		return nil, err
	}

	response, err := s.generate(ctx, fmt.Sprintf(summarisePrompt, condensed))
	if err != nil {
		return nil, err
	}

	summaryText, keyPoints, personalInfo := parseSummaryResponse(response)
	return &domain.Summary{
		DocumentID:   documentID,
		Text:         summaryText,
		KeyPoints:    keyPoints,
		Paragraphs:   splitParagraphs(summaryText),
		PersonalInfo: personalInfo,
		WordCount:    len(strings.Fields(text)),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// fitToBudget reduces text to the model's context budget with repeated
// condensing passes. Each pass splits the text into budget-sized pieces,
// condenses each piece and joins the results.
func (s *Summariser) fitToBudget(ctx context.Context, text string) (string, error) {
	budget := s.llm.ContextBudget()

	for pass := 0; pass < maxReducePasses; pass++ {
		runes := []rune(text)
		if len(runes) <= budget {
			return text, nil
		}

		pieces := splitRunes(runes, budget)
		condensed := make([]string, 0, len(pieces))
		for _, piece := range pieces {
			target := budget / len(pieces)
			result, err := s.generate(ctx, fmt.Sprintf(condensePrompt, target, piece))
			if err != nil {
				return "", err
			}
			condensed = append(condensed, strings.TrimSpace(result))
		}
		text = strings.Join(condensed, "\n\n")
	}

	// Still over budget after the pass ceiling: truncate.
	runes := []rune(text)
	if len(runes) > budget {
		text = string(runes[:budget])
	}
	return text, nil
}

// generate calls the model with retry on transient failures. Exhausted
// retries surface as a terminal generation failure.
func (s *Summariser) generate(ctx context.Context, prompt string) (string, error) {
	var result string
	err := retry.Do(ctx, s.retryPolicy, func(ctx context.Context) error {
		var genErr error
		result, genErr = s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			Temperature: 0.2,
		})
		return genErr
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}
	if strings.TrimSpace(result) == "" {
		return "", fmt.Errorf("%w: model returned empty text", domain.ErrGenerationFailure)
	}
	return result, nil
}

// JoinChunks reconstructs the document text from its ordered chunk set,
// deduplicating the overlap between consecutive chunks via offsets.
func JoinChunks(chunks []domain.Chunk) string {
	var b strings.Builder
	prevEnd := 0
	for _, chunk := range chunks {
		content := []rune(chunk.Content)
		if chunk.StartOffset >= prevEnd {
			b.WriteString(chunk.Content)
		} else {
			skip := prevEnd - chunk.StartOffset
			if skip < len(content) {
				b.WriteString(string(content[skip:]))
			}
		}
		if chunk.EndOffset > prevEnd {
			prevEnd = chunk.EndOffset
		}
	}
	return b.String()
}

// parseSummaryResponse extracts the delimited sections from the model
// response. An unparseable response degrades to using the whole text as
// the summary.
func parseSummaryResponse(response string) (summary string, keyPoints []string, personalInfo string) {
	const (
		sectionNone = iota
		sectionSummary
		sectionKeyPoints
		sectionPersonal
	)

	var summaryLines, personalLines []string
	section := sectionNone

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "SUMMARY:"):
			section = sectionSummary
			if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "SUMMARY:")); rest != "" {
				summaryLines = append(summaryLines, rest)
			}
		case strings.HasPrefix(trimmed, "KEY POINTS:"):
			section = sectionKeyPoints
		case strings.HasPrefix(trimmed, "PERSONAL INFO:"):
			section = sectionPersonal
			if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "PERSONAL INFO:")); rest != "" {
				personalLines = append(personalLines, rest)
			}
		default:
			switch section {
			case sectionSummary:
				summaryLines = append(summaryLines, line)
			case sectionKeyPoints:
				if strings.HasPrefix(trimmed, "- ") {
					keyPoints = append(keyPoints, strings.TrimPrefix(trimmed, "- "))
				}
			case sectionPersonal:
				if trimmed != "" {
					personalLines = append(personalLines, trimmed)
				}
			}
		}
	}

	summary = strings.TrimSpace(strings.Join(summaryLines, "\n"))
	if summary == "" {
		summary = strings.TrimSpace(response)
	}
	personalInfo = strings.TrimSpace(strings.Join(personalLines, " "))
	return summary, keyPoints, personalInfo
}

// splitParagraphs breaks summary text on blank lines.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// splitRunes cuts runes into pieces of at most size runes.
func splitRunes(runes []rune, size int) []string {
	var pieces []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
