package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired documents now",
	Long: `Runs one retention sweep immediately: documents past their retention
window are removed and index inconsistencies are repaired.`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	if lifecycleService == nil {
		return errors.New("lifecycle service not configured")
	}

	removed, err := lifecycleService.SweepOnce(context.Background())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if removed == 0 {
		cmd.Println("Nothing to remove.")
	} else {
		cmd.Printf("Removed %d expired document(s).\n", removed)
	}
	return nil
}
