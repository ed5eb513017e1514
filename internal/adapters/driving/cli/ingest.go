package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doclane/doclane/internal/core/domain"
)

var ingestWait bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Upload a document for processing",
	Long: `Stores a document and processes it in the background: text is
extracted, chunked, embedded for retrieval and summarised. Use --wait to
block until processing finishes.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWait, "wait", "w", false, "wait for processing to finish")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	ctx := context.Background()
	doc, err := ingestService.Ingest(ctx, filepath.Base(path), content)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Accepted %s as document %s\n", doc.Filename, doc.ID)

	if !ingestWait {
		cmd.Println("Processing in the background; check progress with: doclane status", doc.ID)
		return nil
	}

	status, err := waitForDocument(ctx, doc.ID)
	if err != nil {
		return err
	}
	if status == domain.StatusFailed {
		final, statusErr := ingestService.Status(ctx, doc.ID)
		if statusErr == nil && final.ErrorMessage != "" {
			return fmt.Errorf("processing failed: %s", final.ErrorMessage)
		}
		return errors.New("processing failed")
	}

	cmd.Printf("Document %s is ready.\n", doc.ID)
	return nil
}

// waitForDocument blocks until the document reaches a terminal status.
func waitForDocument(ctx context.Context, documentID string) (domain.Status, error) {
	ch, err := ingestService.Watch(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("watch failed: %w", err)
	}
	select {
	case status := <-ch:
		return status, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
