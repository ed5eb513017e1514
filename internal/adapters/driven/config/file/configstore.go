// Package file loads and persists doclane configuration from a TOML
// file in the doclane config directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/doclane/doclane/internal/core/domain"
)

// Config is the on-disk configuration. Zero values fall back to
// defaults when converted to runtime settings.
type Config struct {
	DataDir   string           `toml:"data_dir,omitempty"`
	Pipeline  PipelineSection  `toml:"pipeline"`
	Embedding ProviderSection  `toml:"embedding"`
	LLM       ProviderSection  `toml:"llm"`
	OCR       OCRSection       `toml:"ocr"`
	Watch     WatchSection     `toml:"watch"`

	path string `toml:"-"`
}

// PipelineSection holds chunking, retrieval and retention settings.
type PipelineSection struct {
	ChunkSize          int `toml:"chunk_size,omitempty"`
	ChunkOverlap       int `toml:"chunk_overlap,omitempty"`
	RetrievalK         int `toml:"retrieval_k,omitempty"`
	RetentionDays      int `toml:"retention_days,omitempty"`
	MaxFileMB          int `toml:"max_file_mb,omitempty"`
	SweepIntervalMins  int `toml:"sweep_interval_minutes,omitempty"`
}

// ProviderSection configures an embedding or LLM provider.
type ProviderSection struct {
	Provider  string `toml:"provider,omitempty"`
	BaseURL   string `toml:"base_url,omitempty"`
	APIKey    string `toml:"api_key,omitempty"`
	APIKeyEnv string `toml:"api_key_env,omitempty"`
	Model     string `toml:"model,omitempty"`
}

// OCRSection configures the OCR backend for image files.
type OCRSection struct {
	Binary    string   `toml:"binary,omitempty"`
	Languages []string `toml:"languages,omitempty"`
}

// WatchSection configures the watch-folder ingestion source.
type WatchSection struct {
	Enabled bool   `toml:"enabled,omitempty"`
	Dir     string `toml:"dir,omitempty"`
}

// Load reads configuration from configDir/config.toml. If configDir is
// empty, defaults to ~/.doclane. A missing file yields defaults.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".doclane")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	cfg := &Config{path: filepath.Join(configDir, "config.toml")}

	data, err := os.ReadFile(cfg.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file yet - that's fine, start with defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save persists the configuration to disk with restricted permissions.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	return os.WriteFile(c.path, data, 0600)
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return c.path
}

// PipelineConfig converts the pipeline section to validated runtime
// settings, filling defaults for unset fields.
func (c *Config) PipelineConfig() (domain.PipelineConfig, error) {
	pc := domain.DefaultPipelineConfig()
	if c.Pipeline.ChunkSize > 0 {
		pc.ChunkSize = c.Pipeline.ChunkSize
	}
	if c.Pipeline.ChunkOverlap > 0 {
		pc.ChunkOverlap = c.Pipeline.ChunkOverlap
	}
	if c.Pipeline.RetrievalK > 0 {
		pc.RetrievalK = c.Pipeline.RetrievalK
	}
	if c.Pipeline.RetentionDays > 0 {
		pc.RetentionPeriod = time.Duration(c.Pipeline.RetentionDays) * 24 * time.Hour
	}
	if c.Pipeline.MaxFileMB > 0 {
		pc.MaxFileBytes = int64(c.Pipeline.MaxFileMB) * 1024 * 1024
	}
	if c.Pipeline.SweepIntervalMins > 0 {
		pc.SweepInterval = time.Duration(c.Pipeline.SweepIntervalMins) * time.Minute
	}

	if err := pc.Validate(); err != nil {
		return domain.PipelineConfig{}, err
	}
	return pc, nil
}

// ResolveAPIKey returns the provider's API key, preferring the literal
// value and falling back to the named environment variable.
func (p ProviderSection) ResolveAPIKey() string {
	if p.APIKey != "" {
		return p.APIKey
	}
	if p.APIKeyEnv != "" {
		return os.Getenv(p.APIKeyEnv)
	}
	return ""
}
