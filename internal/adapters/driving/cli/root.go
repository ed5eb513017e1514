// Package cli implements the doclane command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/doclane/doclane/internal/core/ports/driving"
	"github.com/doclane/doclane/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services are injected by the bootstrap before Execute runs. Commands
// nil-check the service they need so a partially configured binary
// fails with a clear message instead of a panic.
var (
	ingestService    driving.IngestService
	queryService     driving.QueryService
	summaryService   driving.SummaryService
	lifecycleService driving.LifecycleService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "doclane",
	Short: "Ask questions about your documents",
	Long: `doclane ingests documents (PDF, Word, images, plain text), indexes
them for retrieval and answers questions grounded in their content.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the service implementations used by the commands.
func SetServices(
	ingest driving.IngestService,
	query driving.QueryService,
	summary driving.SummaryService,
	lifecycle driving.LifecycleService,
) {
	ingestService = ingest
	queryService = query
	summaryService = summary
	lifecycleService = lifecycle
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
