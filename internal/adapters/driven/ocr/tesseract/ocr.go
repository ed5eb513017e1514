// Package tesseract recognises text in images using the tesseract
// command line tool.
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.OCRBackend = (*Backend)(nil)

// ErrTesseractNotFound indicates tesseract is not installed.
var ErrTesseractNotFound = errors.New("tesseract not found in PATH")

// DefaultBinary is the tesseract executable name.
const DefaultBinary = "tesseract"

// CommandRunner abstracts external command execution for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Backend recognises image text with tesseract.
type Backend struct {
	runner    CommandRunner
	binary    string
	languages []string
}

// Option configures a Backend.
type Option func(*Backend)

// WithBinary overrides the tesseract executable path.
func WithBinary(binary string) Option {
	return func(b *Backend) {
		if binary != "" {
			b.binary = binary
		}
	}
}

// WithLanguages sets the recognition languages (tesseract -l).
func WithLanguages(languages []string) Option {
	return func(b *Backend) {
		b.languages = languages
	}
}

// WithRunner sets a custom command runner.
func WithRunner(runner CommandRunner) Option {
	return func(b *Backend) {
		b.runner = runner
	}
}

// New creates a tesseract OCR backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		runner: execRunner{},
		binary: DefaultBinary,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CheckAvailable reports whether tesseract is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		return ErrTesseractNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing tesseract.
func InstallInstructions() string {
	return "tesseract is required for image support.\n" +
		"  macOS:  brew install tesseract\n" +
		"  Debian: apt install tesseract-ocr\n" +
		"  Fedora: dnf install tesseract"
}

// Recognise writes the image to a temp file and runs tesseract over
// it. Recognising no text at all is a failure, not an empty success.
func (b *Backend) Recognise(ctx context.Context, image []byte) (string, error) {
	tmp, err := os.CreateTemp("", "doclane-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// "stdout" sends recognised text to stdout instead of a file.
	args := []string{tmp.Name(), "stdout"}
	if len(b.languages) > 0 {
		args = append(args, "-l", strings.Join(b.languages, "+"))
	}

	out, err := b.runner.Run(ctx, b.binary, args...)
	if err != nil {
		return "", fmt.Errorf("%w: tesseract: %v", domain.ErrOCRFailure, err)
	}

	text := string(bytes.TrimSpace(out))
	if text == "" {
		return "", fmt.Errorf("%w: no text recognised", domain.ErrOCRFailure)
	}

	return text, nil
}
