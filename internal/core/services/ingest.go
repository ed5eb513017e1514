package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doclane/doclane/internal/chunker"
	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
	"github.com/doclane/doclane/internal/core/ports/driving"
	"github.com/doclane/doclane/internal/logger"
	"github.com/doclane/doclane/internal/retry"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// Ingestor accepts uploads and drives each document through the
// extract, chunk, embed, index and summarise pipeline. Ingest returns
// as soon as the pending record exists; the rest runs in a background
// goroutine per document.
type Ingestor struct {
	docs        driven.DocumentStore
	blobs       driven.BlobStore
	extractors  driven.ExtractorRegistry
	chunker     *chunker.Chunker
	embedder    driven.EmbeddingService
	vectors     driven.VectorIndex
	summariser  *Summariser
	cfg         domain.PipelineConfig
	retryPolicy retry.Policy

	mu       sync.Mutex
	watchers map[string][]chan domain.Status
	wg       sync.WaitGroup
}

// NewIngestor creates a new ingestor.
func NewIngestor(
	docs driven.DocumentStore,
	blobs driven.BlobStore,
	extractors driven.ExtractorRegistry,
	chk *chunker.Chunker,
	embedder driven.EmbeddingService,
	vectors driven.VectorIndex,
	summariser *Summariser,
	cfg domain.PipelineConfig,
) *Ingestor {
	return &Ingestor{
		docs:        docs,
		blobs:       blobs,
		extractors:  extractors,
		chunker:     chk,
		embedder:    embedder,
		vectors:     vectors,
		summariser:  summariser,
		cfg:         cfg,
		retryPolicy: retry.DefaultPolicy(),
		watchers:    make(map[string][]chan domain.Status),
	}
}

// Ingest validates the upload, stores the raw bytes, registers a
// pending document and starts background processing. Unknown file
// types and oversized uploads are rejected synchronously; everything
// downstream reports through the document status instead.
func (i *Ingestor) Ingest(ctx context.Context, filename string, content []byte) (*domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: empty filename", domain.ErrInvalidInput)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrEmptyInput)
	}
	if int64(len(content)) > i.cfg.MaxFileBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidInput, i.cfg.MaxFileBytes)
	}

	fileType := domain.DetectFileType(filename, content)
	if fileType == domain.FileTypeUnknown {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, path.Ext(filename))
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        uuid.NewString(),
		Filename:  path.Base(filename),
		FileType:  fileType,
		SizeBytes: int64(len(content)),
		Status:    domain.StatusPending,
		ExpiresAt: now.Add(i.cfg.RetentionPeriod),
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.StorageRef = "blobs/" + doc.ID

	if err := i.blobs.Put(ctx, doc.StorageRef, content); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	if err := i.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	i.spawn(*doc)
	return doc, nil
}

// List returns all documents ordered by creation time.
func (i *Ingestor) List(ctx context.Context) ([]domain.Document, error) {
	return i.docs.ListDocuments(ctx)
}

// Status returns the current document record.
func (i *Ingestor) Status(ctx context.Context, documentID string) (*domain.Document, error) {
	return i.docs.GetDocument(ctx, documentID)
}

// Watch returns a channel that receives the document's terminal status
// exactly once, then closes.
func (i *Ingestor) Watch(ctx context.Context, documentID string) (<-chan domain.Status, error) {
	doc, err := i.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	ch := make(chan domain.Status, 1)
	if doc.Status.IsTerminal() {
		ch <- doc.Status
		close(ch)
		return ch, nil
	}

	i.mu.Lock()
	i.watchers[documentID] = append(i.watchers[documentID], ch)
	i.mu.Unlock()
	return ch, nil
}

// Reprocess restarts the lifecycle for a terminal document from its
// stored blob. Chunks, vectors and the summary are replaced; the
// retention window restarts.
func (i *Ingestor) Reprocess(ctx context.Context, documentID string) error {
	doc, err := i.docs.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if !doc.Status.CanTransition(domain.StatusPending) {
		return fmt.Errorf("%w: cannot reprocess while %s", domain.ErrInvalidInput, doc.Status)
	}

	if err := i.vectors.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("clear vectors: %w", err)
	}

	now := time.Now().UTC()
	doc.Status = domain.StatusPending
	doc.ChunkCount = 0
	doc.ErrorMessage = ""
	doc.ExpiresAt = now.Add(i.cfg.RetentionPeriod)
	doc.UpdatedAt = now
	if err := i.docs.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	i.spawn(*doc)
	return nil
}

// Delete removes the document, its vectors and its blob. Deleting an
// absent document is not an error.
func (i *Ingestor) Delete(ctx context.Context, documentID string) error {
	doc, err := i.docs.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get document: %w", err)
	}

	// Vectors first so a partial delete can never serve queries for a
	// document whose metadata is gone.
	if err := i.vectors.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	if err := i.docs.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if doc.StorageRef != "" {
		if err := i.blobs.Delete(ctx, doc.StorageRef); err != nil {
			return fmt.Errorf("delete blob: %w", err)
		}
	}
	return nil
}

// Wait blocks until all in-flight processing goroutines finish.
func (i *Ingestor) Wait() {
	i.wg.Wait()
}

// spawn starts background processing for a pending document. The
// pipeline runs detached from the caller's request context.
func (i *Ingestor) spawn(doc domain.Document) {
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.process(context.Background(), doc)
	}()
}

// process runs the full pipeline for one document. Any stage failure
// moves the document to failed with the cause recorded; nothing
// downstream of a failed stage runs.
func (i *Ingestor) process(ctx context.Context, doc domain.Document) {
	doc.Status = domain.StatusProcessing
	doc.UpdatedAt = time.Now().UTC()
	if err := i.docs.SaveDocument(ctx, &doc); err != nil {
		logger.Warn("Failed to mark %s processing: %v", doc.ID, err)
		return
	}

	logger.Debug("Processing document %s (%s)", doc.ID, doc.Filename)

	content, err := i.blobs.Get(ctx, doc.StorageRef)
	if err != nil {
		i.fail(ctx, doc, fmt.Errorf("load blob: %w", err))
		return
	}

	text, err := i.extractors.Extract(ctx, doc.FileType, content)
	if err != nil {
		i.fail(ctx, doc, fmt.Errorf("extract: %w", err))
		return
	}

	chunks, err := i.chunker.Chunk(doc.ID, text)
	if err != nil {
		i.fail(ctx, doc, fmt.Errorf("chunk: %w", err))
		return
	}

	// Embedding+indexing and summarisation are independent once chunks
	// exist; run them concurrently.
	var (
		wg         sync.WaitGroup
		indexErr   error
		summary    *domain.Summary
		summaryErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		indexErr = i.embedAndIndex(ctx, doc.ID, chunks)
	}()
	go func() {
		defer wg.Done()
		summary, summaryErr = i.summariser.GenerateFromChunks(ctx, doc.ID, chunks)
	}()
	wg.Wait()

	if indexErr != nil {
		i.fail(ctx, doc, fmt.Errorf("index: %w", indexErr))
		return
	}
	if summaryErr != nil {
		i.fail(ctx, doc, fmt.Errorf("summarise: %w", summaryErr))
		return
	}

	if err := i.docs.SaveChunks(ctx, doc.ID, chunks); err != nil {
		i.fail(ctx, doc, fmt.Errorf("save chunks: %w", err))
		return
	}
	if err := i.docs.SaveSummary(ctx, summary); err != nil {
		i.fail(ctx, doc, fmt.Errorf("save summary: %w", err))
		return
	}

	doc.Status = domain.StatusReady
	doc.ChunkCount = len(chunks)
	doc.ErrorMessage = ""
	doc.UpdatedAt = time.Now().UTC()
	if err := i.docs.SaveDocument(ctx, &doc); err != nil {
		logger.Warn("Failed to mark %s ready: %v", doc.ID, err)
		return
	}

	logger.Debug("Document %s ready: %d chunks", doc.ID, len(chunks))
	i.notify(doc.ID, domain.StatusReady)
}

// embedAndIndex embeds all chunks in one batch, replaces the document's
// vector partition atomically and verifies the stored count.
func (i *Ingestor) embedAndIndex(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for n, chunk := range chunks {
		texts[n] = chunk.Content
	}

	var vectors [][]float32
	err := retry.Do(ctx, i.retryPolicy, func(ctx context.Context) error {
		var embErr error
		vectors, embErr = i.embedder.EmbedBatch(ctx, texts)
		return embErr
	})
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrIndexMismatch, len(vectors), len(chunks))
	}

	entries := make([]driven.VectorEntry, len(chunks))
	for n := range chunks {
		chunks[n].Embedding = vectors[n]
		entries[n] = driven.VectorEntry{
			ChunkID:   chunks[n].ID,
			SeqIndex:  chunks[n].SeqIndex,
			Embedding: vectors[n],
		}
	}

	if err := i.vectors.Upsert(ctx, documentID, entries); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}

	count, err := i.vectors.Count(ctx, documentID)
	if err != nil {
		return fmt.Errorf("verify count: %w", err)
	}
	if count != len(chunks) {
		return fmt.Errorf("%w: index holds %d of %d vectors", domain.ErrIndexMismatch, count, len(chunks))
	}
	return nil
}

// fail moves the document to failed with the cause recorded.
func (i *Ingestor) fail(ctx context.Context, doc domain.Document, cause error) {
	logger.Warn("Document %s failed: %v", doc.ID, cause)

	doc.Status = domain.StatusFailed
	doc.ErrorMessage = cause.Error()
	doc.UpdatedAt = time.Now().UTC()
	if err := i.docs.SaveDocument(ctx, &doc); err != nil {
		logger.Warn("Failed to mark %s failed: %v", doc.ID, err)
	}
	i.notify(doc.ID, domain.StatusFailed)
}

// notify delivers the terminal status to all watchers of a document.
func (i *Ingestor) notify(documentID string, status domain.Status) {
	i.mu.Lock()
	channels := i.watchers[documentID]
	delete(i.watchers, documentID)
	i.mu.Unlock()

	for _, ch := range channels {
		ch <- status
		close(ch)
	}
}
