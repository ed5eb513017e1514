package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doclane/doclane/internal/adapters/driven/config/file"
	"github.com/doclane/doclane/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/doclane/doclane/internal/adapters/driven/embedding/openai"
	"github.com/doclane/doclane/internal/adapters/driven/llm/anthropic"
	openaillm "github.com/doclane/doclane/internal/adapters/driven/llm/openai"
	"github.com/doclane/doclane/internal/adapters/driven/ocr/tesseract"
	"github.com/doclane/doclane/internal/adapters/driven/storage/blob"
	"github.com/doclane/doclane/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/doclane/doclane/internal/adapters/driven/vector/memory"
	"github.com/doclane/doclane/internal/adapters/driving/cli"
	"github.com/doclane/doclane/internal/chunker"
	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
	"github.com/doclane/doclane/internal/core/ports/driving"
	"github.com/doclane/doclane/internal/core/services"
	"github.com/doclane/doclane/internal/extractors"
	"github.com/doclane/doclane/internal/extractors/docx"
	"github.com/doclane/doclane/internal/extractors/image"
	"github.com/doclane/doclane/internal/extractors/pdf"
	"github.com/doclane/doclane/internal/extractors/plaintext"
	"github.com/doclane/doclane/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pipeline, err := cfg.PipelineConfig()
	if err != nil {
		return fmt.Errorf("invalid pipeline config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close()

	blobDir := ""
	if cfg.DataDir != "" {
		blobDir = filepath.Join(cfg.DataDir, "blobs")
	}
	blobs, err := blob.NewStore(blobDir)
	if err != nil {
		return fmt.Errorf("opening blob store: %w", err)
	}

	vectors := vectormem.NewIndex()
	if err := rebuildIndex(context.Background(), store, vectors); err != nil {
		return fmt.Errorf("rebuilding vector index: %w", err)
	}

	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())
	registry.Register(image.New(newOCRBackend(cfg)))

	chk := chunker.New(
		chunker.WithChunkSize(pipeline.ChunkSize),
		chunker.WithOverlap(pipeline.ChunkOverlap),
	)

	// Provider construction can fail (missing API key). Commands that
	// do not need providers still work, so wire what we can and let
	// the rest nil-check.
	embedder, err := newEmbedder(cfg)
	if err != nil {
		logger.Warn("Embedding provider not available: %v", err)
	}
	llm, err := newLLM(cfg)
	if err != nil {
		logger.Warn("LLM provider not available: %v", err)
	}

	var (
		ingestor   *services.Ingestor
		ingestSvc  driving.IngestService
		querySvc   driving.QueryService
		summarySvc driving.SummaryService
	)
	if llm != nil {
		summariser := services.NewSummariser(store, llm)
		summarySvc = summariser
		if embedder != nil {
			ingestor = services.NewIngestor(store, blobs, registry, chk, embedder, vectors, summariser, pipeline)
			ingestSvc = ingestor
			retriever := services.NewRetriever(store, embedder, vectors, pipeline.RetrievalK)
			querySvc = services.NewAnswerer(retriever, llm)
		}
	}
	sweeper := services.NewSweeper(store, blobs, vectors, pipeline.SweepInterval)

	cli.SetServices(ingestSvc, querySvc, summarySvc, sweeper)
	if cfg.Watch.Enabled || cfg.Watch.Dir != "" {
		cli.SetWatchDir(cfg.Watch.Dir)
	}

	err = cli.Execute()

	// Ingestion runs in the background. Let in-flight pipelines settle
	// before the process exits so documents do not strand in processing.
	if ingestor != nil {
		ingestor.Wait()
	}
	return err
}

// rebuildIndex reloads stored chunk embeddings into the in-process
// vector index. Ready documents whose chunks lost their embeddings are
// left out; the sweep reconciliation marks them failed.
func rebuildIndex(ctx context.Context, store driven.DocumentStore, vectors driven.VectorIndex) error {
	ready, err := store.ListByStatus(ctx, domain.StatusReady)
	if err != nil {
		return err
	}
	for _, doc := range ready {
		chunks, err := store.GetChunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("loading chunks for %s: %w", doc.ID, err)
		}
		entries := make([]driven.VectorEntry, 0, len(chunks))
		for _, chunk := range chunks {
			if len(chunk.Embedding) == 0 {
				continue
			}
			entries = append(entries, driven.VectorEntry{
				ChunkID:   chunk.ID,
				SeqIndex:  chunk.SeqIndex,
				Embedding: chunk.Embedding,
			})
		}
		if len(entries) == 0 {
			continue
		}
		if err := vectors.Upsert(ctx, doc.ID, entries); err != nil {
			return fmt.Errorf("indexing %s: %w", doc.ID, err)
		}
	}
	return nil
}

func newEmbedder(cfg *file.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "", "openai":
		key := cfg.Embedding.ResolveAPIKey()
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  key,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func newLLM(cfg *file.Config) (driven.LLMService, error) {
	switch cfg.LLM.Provider {
	case "", "openai":
		key := cfg.LLM.ResolveAPIKey()
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  key,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
	case "anthropic":
		key := cfg.LLM.ResolveAPIKey()
		if key == "" {
			key = os.Getenv("ANTHROPIC_API_KEY")
		}
		return anthropic.NewLLMService(anthropic.Config{
			APIKey:  key,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func newOCRBackend(cfg *file.Config) *tesseract.Backend {
	opts := []tesseract.Option{}
	if cfg.OCR.Binary != "" {
		opts = append(opts, tesseract.WithBinary(cfg.OCR.Binary))
	}
	if len(cfg.OCR.Languages) > 0 {
		opts = append(opts, tesseract.WithLanguages(cfg.OCR.Languages))
	}
	return tesseract.New(opts...)
}
