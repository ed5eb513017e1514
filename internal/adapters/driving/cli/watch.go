package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doclane/doclane/internal/adapters/driving/watcher"
)

// watchDir is the configured default directory, injected by the
// bootstrap. An explicit argument overrides it.
var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files dropped into a directory",
	Long: `Watches a directory and ingests every document placed in it. Runs
until interrupted. Without an argument the configured watch directory
is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// SetWatchDir injects the configured default watch directory.
func SetWatchDir(dir string) {
	watchDir = dir
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := watchDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no watch directory configured; pass one or set watch.dir in the config")
	}

	w, err := watcher.New(ingestService, dir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s. Press Ctrl+C to stop.\n", dir)
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
