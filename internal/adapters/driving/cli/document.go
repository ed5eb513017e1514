package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doclane/doclane/internal/core/domain"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show a document's processing status",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and all derived data",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var reprocessCmd = &cobra.Command{
	Use:   "reprocess [doc-id]",
	Short: "Rerun the pipeline for a document",
	Long: `Reprocesses a ready or failed document from its stored upload,
replacing its chunks, vectors and summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runReprocess,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "wait for processing to finish")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(reprocessCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	documentID := args[0]
	ctx := context.Background()

	doc, err := ingestService.Status(ctx, documentID)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusWatch && !doc.Status.IsTerminal() {
		cmd.Printf("Document %s is %s; waiting...\n", doc.ID, doc.Status)
		if _, err := waitForDocument(ctx, doc.ID); err != nil {
			return err
		}
		doc, err = ingestService.Status(ctx, documentID)
		if err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
	}

	printDocument(cmd, doc)
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	docs, err := ingestService.List(context.Background())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s  %-10s  %s\n", doc.ID, doc.Status, doc.Filename)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	documentID := args[0]
	if err := ingestService.Delete(context.Background(), documentID); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", documentID)
	return nil
}

func runReprocess(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	documentID := args[0]
	if err := ingestService.Reprocess(context.Background(), documentID); err != nil {
		return fmt.Errorf("reprocess failed: %w", err)
	}

	cmd.Printf("Reprocessing %s in the background.\n", documentID)
	return nil
}

func printDocument(cmd *cobra.Command, doc *domain.Document) {
	cmd.Printf("ID:       %s\n", doc.ID)
	cmd.Printf("Filename: %s\n", doc.Filename)
	cmd.Printf("Type:     %s\n", doc.FileType)
	cmd.Printf("Status:   %s\n", doc.Status)
	if doc.Status == domain.StatusReady {
		cmd.Printf("Chunks:   %d\n", doc.ChunkCount)
	}
	if doc.ErrorMessage != "" {
		cmd.Printf("Error:    %s\n", doc.ErrorMessage)
	}
	if !doc.ExpiresAt.IsZero() {
		cmd.Printf("Expires:  %s\n", doc.ExpiresAt.Format("2006-01-02 15:04"))
	}
}
