package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
	assert.Equal(t, domain.FileTypePDF, e.FileType())
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("test output")}
	e := NewWithRunner(runner)
	require.NotNil(t, e)
	assert.Equal(t, runner, e.runner)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.TextExtractor = (*Extractor)(nil)
}

func TestExtract_Success(t *testing.T) {
	runner := &mockRunner{output: []byte("PDF Title\n\nThis is the content.\n")}
	e := NewWithRunner(runner)

	text, err := e.Extract(context.Background(), []byte("%PDF-1.4 fake pdf"))
	require.NoError(t, err)
	assert.Equal(t, "PDF Title\n\nThis is the content.", text)
}

func TestExtract_MissingHeader(t *testing.T) {
	e := NewWithRunner(&mockRunner{output: []byte("ignored")})

	_, err := e.Extract(context.Background(), []byte("not a pdf"))
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
}

func TestExtract_ToolFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("exit status 1")}
	e := NewWithRunner(runner)

	_, err := e.Extract(context.Background(), []byte("%PDF-1.4 broken"))
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
}

func TestExtract_NoText(t *testing.T) {
	runner := &mockRunner{output: []byte("   \n  ")}
	e := NewWithRunner(runner)

	_, err := e.Extract(context.Background(), []byte("%PDF-1.4 scanned"))
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Error(t, ErrPDFToolNotFound)
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}
