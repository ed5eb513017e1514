package domain

import "time"

// Default pipeline configuration values.
const (
	DefaultChunkSize     = 1000
	DefaultChunkOverlap  = 200
	DefaultRetrievalK    = 5
	DefaultRetentionDays = 7
	DefaultMaxFileBytes  = 20 << 20 // 20 MiB
	DefaultSweepInterval = 10 * time.Minute

	// DefaultStaleProcessingAge is how long a document may sit in
	// processing before the sweep treats its pipeline as dead.
	DefaultStaleProcessingAge = 30 * time.Minute
)

// PipelineConfig is the immutable configuration handed to pipeline
// components at construction. It is never read from ambient global state.
type PipelineConfig struct {
	// ChunkSize is the chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks in
	// characters. Must be smaller than ChunkSize.
	ChunkOverlap int

	// RetrievalK is the default number of chunks returned per query.
	RetrievalK int

	// RetentionPeriod is how long a document lives after upload.
	RetentionPeriod time.Duration

	// MaxFileBytes is the maximum accepted upload size.
	MaxFileBytes int64

	// SweepInterval is how often the expiry sweep runs.
	SweepInterval time.Duration
}

// DefaultPipelineConfig returns the configuration used when no config
// file overrides are present.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ChunkSize:       DefaultChunkSize,
		ChunkOverlap:    DefaultChunkOverlap,
		RetrievalK:      DefaultRetrievalK,
		RetentionPeriod: DefaultRetentionDays * 24 * time.Hour,
		MaxFileBytes:    DefaultMaxFileBytes,
		SweepInterval:   DefaultSweepInterval,
	}
}

// Validate checks the configuration invariants.
func (c PipelineConfig) Validate() error {
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 {
		return ErrInvalidInput
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return ErrInvalidInput
	}
	if c.RetrievalK <= 0 || c.MaxFileBytes <= 0 {
		return ErrInvalidInput
	}
	if c.RetentionPeriod <= 0 || c.SweepInterval <= 0 {
		return ErrInvalidInput
	}
	return nil
}
