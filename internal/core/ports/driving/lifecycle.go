package driving

import "context"

// LifecycleService enforces the retention policy in the background.
type LifecycleService interface {
	// Start begins the sweep loop. Blocks until Stop is called or ctx
	// is cancelled.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the sweep loop, waiting for an
	// in-flight sweep to finish.
	Stop() error

	// SweepOnce removes all expired documents immediately and
	// reconciles index/metadata inconsistencies. Returns the number of
	// documents removed.
	SweepOnce(ctx context.Context) (int, error)
}
