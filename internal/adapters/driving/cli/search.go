package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doclane/doclane/internal/core/domain"
)

var (
	searchK    int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [doc-id] [query]",
	Short: "Find relevant passages in a document",
	Long: `Performs semantic search over one document's indexed chunks and
prints the best matching passages with their similarity scores.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "top", "k", 0, "number of passages to return (0 = default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	documentID, query := args[0], args[1]
	ctx := context.Background()

	result, err := queryService.Search(ctx, documentID, query, searchK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}
	return outputSearchText(cmd, result)
}

func outputSearchJSON(cmd *cobra.Command, result *domain.RetrievalResult) error {
	payload := struct {
		*domain.RetrievalResult
		Confidence string
	}{result, result.Confidence()}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, result *domain.RetrievalResult) error {
	if len(result.Chunks) == 0 {
		cmd.Println("No matching passages found.")
		return nil
	}

	for i, sc := range result.Chunks {
		cmd.Printf("[%d] score %.3f (chunk %d)\n", i+1, sc.Score, sc.Chunk.SeqIndex)
		cmd.Println(indent(strings.TrimSpace(sc.Chunk.Content), "    "))
		cmd.Println()
	}
	cmd.Printf("Confidence: %s\n", result.Confidence())
	return nil
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
