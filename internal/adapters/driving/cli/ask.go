package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askStream bool

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question about a document",
	Long: `Retrieves the most relevant passages from the document and generates
an answer grounded in them. Use --stream to print the answer as it is
generated.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askStream, "stream", "s", false, "stream the answer incrementally")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	documentID, question := args[0], args[1]
	ctx := context.Background()

	if askStream {
		return streamAnswer(ctx, cmd, documentID, question)
	}

	answer, result, err := queryService.Answer(ctx, documentID, question)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	cmd.Println(answer)
	cmd.Printf("\n(based on %d passage(s) from %s, confidence: %s)\n", len(result.Chunks), documentID, result.Confidence())
	return nil
}

func streamAnswer(ctx context.Context, cmd *cobra.Command, documentID, question string) error {
	fragments, result, err := queryService.AnswerStream(ctx, documentID, question)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	for fragment := range fragments {
		if fragment.Err != nil {
			cmd.Println()
			return fmt.Errorf("answer failed mid-stream: %w", fragment.Err)
		}
		cmd.Print(fragment.Text)
	}
	cmd.Println()
	cmd.Printf("\n(based on %d passage(s) from %s, confidence: %s)\n", len(result.Chunks), documentID, result.Confidence())
	return nil
}
