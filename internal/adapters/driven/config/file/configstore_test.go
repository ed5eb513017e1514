package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclane/doclane/internal/core/domain"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	pc, err := cfg.PipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultChunkSize, pc.ChunkSize)
	assert.Equal(t, domain.DefaultChunkOverlap, pc.ChunkOverlap)
}

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
data_dir = "/tmp/doclane-data"

[pipeline]
chunk_size = 500
chunk_overlap = 50
retrieval_k = 3
retention_days = 14

[embedding]
provider = "openai"
model = "text-embedding-3-small"
api_key = "sk-test"

[llm]
provider = "anthropic"
model = "claude-sonnet"

[watch]
enabled = true
dir = "/tmp/inbox"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/doclane-data", cfg.DataDir)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, "/tmp/inbox", cfg.Watch.Dir)

	pc, err := cfg.PipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, 500, pc.ChunkSize)
	assert.Equal(t, 50, pc.ChunkOverlap)
	assert.Equal(t, 3, pc.RetrievalK)
	assert.Equal(t, 14*24*time.Hour, pc.RetentionPeriod)
}

func TestLoad_InvalidPipelineValues(t *testing.T) {
	dir := t.TempDir()
	content := `
[pipeline]
chunk_size = 100
chunk_overlap = 200
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	_, err = cfg.PipelineConfig()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	cfg.Embedding.Provider = "ollama"
	cfg.Embedding.BaseURL = "http://localhost:11434"
	require.NoError(t, cfg.Save())

	// Restricted permissions
	info, err := os.Stat(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", loaded.Embedding.Provider)
	assert.Equal(t, "http://localhost:11434", loaded.Embedding.BaseURL)
}

func TestProviderSection_ResolveAPIKey(t *testing.T) {
	section := ProviderSection{APIKey: "literal"}
	assert.Equal(t, "literal", section.ResolveAPIKey())

	t.Setenv("DOCLANE_TEST_KEY", "from-env")
	section = ProviderSection{APIKeyEnv: "DOCLANE_TEST_KEY"}
	assert.Equal(t, "from-env", section.ResolveAPIKey())

	section = ProviderSection{APIKey: "literal", APIKeyEnv: "DOCLANE_TEST_KEY"}
	assert.Equal(t, "literal", section.ResolveAPIKey())

	assert.Empty(t, ProviderSection{}.ResolveAPIKey())
}
