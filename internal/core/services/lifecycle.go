package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
	"github.com/doclane/doclane/internal/core/ports/driving"
	"github.com/doclane/doclane/internal/logger"
)

// Ensure Sweeper implements the interface.
var _ driving.LifecycleService = (*Sweeper)(nil)

// Sweeper enforces retention and repairs index/metadata drift in the
// background. One sweep removes every expired document and reconciles
// the vector index against the document store.
type Sweeper struct {
	docs       driven.DocumentStore
	blobs      driven.BlobStore
	vectors    driven.VectorIndex
	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSweeper creates a new sweeper running at the given interval.
func NewSweeper(
	docs driven.DocumentStore,
	blobs driven.BlobStore,
	vectors driven.VectorIndex,
	interval time.Duration,
) *Sweeper {
	if interval <= 0 {
		interval = domain.DefaultSweepInterval
	}
	return &Sweeper{
		docs:       docs,
		blobs:      blobs,
		vectors:    vectors,
		interval:   interval,
		staleAfter: domain.DefaultStaleProcessingAge,
		now:        time.Now,
	}
}

// Start begins the sweep loop. Blocks until Stop is called or ctx is
// cancelled. A sweep failure is logged, never fatal to the loop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			removed, err := s.SweepOnce(ctx)
			if err != nil {
				logger.Warn("Sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				logger.Info("Sweep removed %d expired document(s)", removed)
			}
		}
	}
}

// Stop gracefully shuts down the sweep loop, waiting for an in-flight
// sweep to finish.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
	return nil
}

// SweepOnce removes all expired documents and reconciles index and
// metadata. Returns the number of documents removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	removed, err := s.removeExpired(ctx)
	if err != nil {
		return removed, err
	}

	if err := s.reconcile(ctx); err != nil {
		return removed, err
	}
	return removed, nil
}

// removeExpired deletes every document past its retention window,
// vectors first so a half-deleted document can never serve queries.
func (s *Sweeper) removeExpired(ctx context.Context) (int, error) {
	expired, err := s.docs.ListExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("list expired: %w", err)
	}

	removed := 0
	for _, doc := range expired {
		if err := s.vectors.Delete(ctx, doc.ID); err != nil {
			return removed, fmt.Errorf("delete vectors for %s: %w", doc.ID, err)
		}
		if err := s.docs.DeleteDocument(ctx, doc.ID); err != nil {
			return removed, fmt.Errorf("delete document %s: %w", doc.ID, err)
		}
		if doc.StorageRef != "" {
			if err := s.blobs.Delete(ctx, doc.StorageRef); err != nil {
				return removed, fmt.Errorf("delete blob for %s: %w", doc.ID, err)
			}
		}
		logger.Debug("Expired document %s removed", doc.ID)
		removed++
	}
	return removed, nil
}

// reconcile repairs drift between the vector index and the document
// store. Orphan vector partitions are dropped, ready documents with no
// vectors are marked failed so queries fail loudly instead of returning
// nothing, and documents stuck in processing past the staleness window
// are marked failed so they become reprocessable again.
func (s *Sweeper) reconcile(ctx context.Context) error {
	ids, err := s.vectors.DocumentIDs(ctx)
	if err != nil {
		return fmt.Errorf("list vector partitions: %w", err)
	}
	for _, id := range ids {
		_, err := s.docs.GetDocument(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get document %s: %w", id, err)
		}
		logger.Warn("Dropping orphan vector partition %s", id)
		if err := s.vectors.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete orphan partition %s: %w", id, err)
		}
	}

	ready, err := s.docs.ListByStatus(ctx, domain.StatusReady)
	if err != nil {
		return fmt.Errorf("list ready documents: %w", err)
	}
	for _, doc := range ready {
		count, err := s.vectors.Count(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("count vectors for %s: %w", doc.ID, err)
		}
		if count > 0 {
			continue
		}
		logger.Warn("Ready document %s has no vectors; marking failed", doc.ID)
		doc.Status = domain.StatusFailed
		doc.ErrorMessage = domain.ErrIndexMismatch.Error()
		doc.UpdatedAt = s.now().UTC()
		if err := s.docs.SaveDocument(ctx, &doc); err != nil {
			return fmt.Errorf("mark %s failed: %w", doc.ID, err)
		}
	}

	processing, err := s.docs.ListByStatus(ctx, domain.StatusProcessing)
	if err != nil {
		return fmt.Errorf("list processing documents: %w", err)
	}
	cutoff := s.now().UTC().Add(-s.staleAfter)
	for _, doc := range processing {
		if doc.UpdatedAt.After(cutoff) {
			continue
		}
		logger.Warn("Document %s stuck in processing since %s; marking failed", doc.ID, doc.UpdatedAt.Format(time.RFC3339))
		doc.Status = domain.StatusFailed
		doc.ErrorMessage = "processing interrupted; reprocess to retry"
		doc.UpdatedAt = s.now().UTC()
		if err := s.docs.SaveDocument(ctx, &doc); err != nil {
			return fmt.Errorf("mark %s failed: %w", doc.ID, err)
		}
	}
	return nil
}
