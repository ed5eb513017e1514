package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doclane/doclane/internal/core/domain"
)

var summaryRegenerate bool

var summaryCmd = &cobra.Command{
	Use:   "summary [doc-id]",
	Short: "Show a document's summary",
	Long: `Prints the summary generated during ingestion. Use --regenerate to
produce a fresh summary from the stored chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryRegenerate, "regenerate", false, "regenerate the summary")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	if summaryService == nil {
		return errors.New("summary service not configured")
	}

	documentID := args[0]
	ctx := context.Background()

	var (
		summary *domain.Summary
		err     error
	)
	if summaryRegenerate {
		summary, err = summaryService.Summarise(ctx, documentID)
	} else {
		summary, err = summaryService.Get(ctx, documentID)
	}
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}

	cmd.Println(summary.Text)

	if len(summary.KeyPoints) > 0 {
		cmd.Println("\nKey points:")
		for _, point := range summary.KeyPoints {
			cmd.Printf("  - %s\n", point)
		}
	}
	if summary.PersonalInfo != "" && summary.PersonalInfo != "none" {
		cmd.Printf("\nPersonal information: %s\n", summary.PersonalInfo)
	}
	cmd.Printf("\n(%d words in source document)\n", summary.WordCount)
	return nil
}
